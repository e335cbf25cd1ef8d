// Package graph defines the adjacency graph shared by composite curves and
// composite patches: a fixed-capacity, append-only arena of element records,
// the closed direction enums that key neighbour links, and the colour and
// material presets attached to elements.
//
// Neighbour links are arena indices, NoNeighbor when absent. They are
// non-owning; the arena owns every record.
package graph
