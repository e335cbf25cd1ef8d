package composite

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chazu/hyperweave/pkg/graph"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// The file layout shared by curve and patch sets:
//
//	<count>
//	<x y z>                  points-per-element lines per element
//	<index> <neighbour>      slots-per-element lines per element, slot order
//
// The index column repeats the element's position in the file.
//
// Neighbour -1 marks an empty slot.

// tokens reads whitespace-separated fields and reports parse errors by
// position.
type tokens struct {
	sc  *bufio.Scanner
	pos int
}

func newTokens(r io.Reader) *tokens {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &tokens{sc: sc}
}

func (t *tokens) next(what string) (string, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return "", fmt.Errorf("%w: reading %s: %v", ErrIOFailure, what, err)
		}
		return "", fmt.Errorf("%w: token %d: missing %s", ErrIOFailure, t.pos+1, what)
	}
	t.pos++
	return t.sc.Text(), nil
}

func (t *tokens) integer(what string) (int, error) {
	s, err := t.next(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: token %d: %s %q is not an integer", ErrIOFailure, t.pos, what, s)
	}
	return n, nil
}

func (t *tokens) number(what string) (float64, error) {
	s, err := t.next(what)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: token %d: %s %q is not a number", ErrIOFailure, t.pos, what, s)
	}
	return f, nil
}

func (t *tokens) vec(what string) (v3.Vec, error) {
	var c [3]float64
	for k := range c {
		f, err := t.number(what)
		if err != nil {
			return v3.Vec{}, err
		}
		c[k] = f
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// layout is a parsed file before it is turned into elements.
type layout struct {
	points [][]v3.Vec
	links  [][]int
}

// readLayout parses count elements of perElement points and slots links
// each, checking that every link line names its own element, that every
// neighbour lies in [0, count) and that the count fits capacity.
func readLayout(r io.Reader, perElement, slots, capacity int) (*layout, error) {
	tk := newTokens(r)
	count, err := tk.integer("element count")
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative element count %d", ErrIOFailure, count)
	}
	if count > capacity {
		return nil, fmt.Errorf("%w: %d elements exceed capacity %d: %w", ErrIOFailure, count, capacity, graph.ErrCapacityExceeded)
	}
	l := &layout{points: make([][]v3.Vec, count), links: make([][]int, count)}
	for i := range l.points {
		l.points[i] = make([]v3.Vec, perElement)
		for k := range l.points[i] {
			if l.points[i][k], err = tk.vec("coordinate"); err != nil {
				return nil, err
			}
		}
	}
	for i := range l.links {
		l.links[i] = make([]int, slots)
		for k := range l.links[i] {
			idx, err := tk.integer("element index")
			if err != nil {
				return nil, err
			}
			if idx != i {
				return nil, fmt.Errorf("%w: token %d: link line for element %d names element %d", ErrIOFailure, tk.pos, i, idx)
			}
			nbr, err := tk.integer("neighbour")
			if err != nil {
				return nil, err
			}
			if nbr != graph.NoNeighbor && (nbr < 0 || nbr >= count) {
				return nil, fmt.Errorf("%w: token %d: neighbour %d not in [0, %d)", ErrIOFailure, tk.pos, nbr, count)
			}
			l.links[i][k] = nbr
		}
	}
	return l, nil
}

// validateTables runs the graph link checks over the parsed tables.
func validateTables(tables []graph.LinkTable) error {
	if errs := graph.ValidateLinks(tables, len(tables)); graph.HasErrors(errs) {
		for _, e := range errs {
			if e.Severity == graph.SeverityError {
				return fmt.Errorf("%w: %v", ErrIOFailure, e)
			}
		}
	}
	return nil
}

func writeLayout(w io.Writer, points [][]v3.Vec, links [][]int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(points))
	for _, pts := range points {
		for _, p := range pts {
			fmt.Fprintf(bw, "%s %s %s\n", formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
		}
	}
	for i, ls := range links {
		for _, n := range ls {
			fmt.Fprintf(bw, "%d %d\n", i, n)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

// formatFloat writes the shortest representation that parses back exactly.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func createFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

func openFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer f.Close()
	return read(f)
}
