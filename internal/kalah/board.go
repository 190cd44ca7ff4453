package kalah

import (
	"errors"
	"fmt"
)

const (
	DefaultPitsPerSide  = 6
	DefaultInitialSeeds = 4
)

var (
	ErrOutOfRange        = errors.New("pit index out of range")
	ErrInvalidParameters = errors.New("invalid board parameters")
)

// Side identifies one of the two players and the half of the board they own.
type Side int

const (
	SideA Side = iota
	SideB
)

func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) String() string {
	if s == SideB {
		return "B"
	}
	return "A"
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "A":
		*s = SideA
	case "B":
		*s = SideB
	default:
		return fmt.Errorf("unknown side %q", text)
	}
	return nil
}

// Board holds seed counts for both rows of pits and both stores.
// It knows the board geometry but nothing about turns or rules.
type Board struct {
	pitsPerSide  int
	initialSeeds int

	pits   [2][]int
	stores [2]int
}

func NewBoard(pitsPerSide, initialSeeds int) (*Board, error) {
	if pitsPerSide <= 0 || initialSeeds < 0 {
		return nil, fmt.Errorf("%w: pits per side %d, initial seeds %d", ErrInvalidParameters, pitsPerSide, initialSeeds)
	}

	board := &Board{
		pitsPerSide:  pitsPerSide,
		initialSeeds: initialSeeds,
		pits:         [2][]int{make([]int, pitsPerSide), make([]int, pitsPerSide)},
	}
	board.Reset()

	return board, nil
}

func (that *Board) PitsPerSide() int {
	return that.pitsPerSide
}

func (that *Board) InitialSeeds() int {
	return that.initialSeeds
}

func (that *Board) Seeds(side Side, index int) (int, error) {
	if err := that.checkIndex(index); err != nil {
		return 0, err
	}

	return that.pits[side][index], nil
}

// SetSeeds and AddSeeds do not guard against negative counts.
func (that *Board) SetSeeds(side Side, index, count int) error {
	if err := that.checkIndex(index); err != nil {
		return err
	}

	that.pits[side][index] = count

	return nil
}

func (that *Board) AddSeeds(side Side, index, delta int) error {
	if err := that.checkIndex(index); err != nil {
		return err
	}

	that.pits[side][index] += delta

	return nil
}

func (that *Board) StoreSeeds(side Side) int {
	return that.stores[side]
}

func (that *Board) AddToStore(side Side, delta int) {
	that.stores[side] += delta
}

// OppositeIndex returns the index of the pit directly across the board.
func (that *Board) OppositeIndex(index int) int {
	return that.pitsPerSide - 1 - index
}

// SideSum counts the seeds in a side's pits, its store excluded.
func (that *Board) SideSum(side Side) int {
	sum := 0
	for _, seeds := range that.pits[side] {
		sum += seeds
	}

	return sum
}

// Total counts every seed on the board, stores included.
func (that *Board) Total() int {
	return that.SideSum(SideA) + that.SideSum(SideB) + that.stores[SideA] + that.stores[SideB]
}

func (that *Board) Reset() {
	for _, side := range []Side{SideA, SideB} {
		for i := range that.pits[side] {
			that.pits[side][i] = that.initialSeeds
		}
		that.stores[side] = 0
	}
}

// Snapshot returns a copy of the board that shares no memory with it.
func (that *Board) Snapshot() Snapshot {
	return Snapshot{Pits: that.pits, Stores: that.stores}.Clone()
}

func (that *Board) clone() *Board {
	snapshot := that.Snapshot()

	return &Board{
		pitsPerSide:  that.pitsPerSide,
		initialSeeds: that.initialSeeds,
		pits:         snapshot.Pits,
		stores:       snapshot.Stores,
	}
}

func (that *Board) checkIndex(index int) error {
	if index < 0 || index >= that.pitsPerSide {
		return fmt.Errorf("%w: pit %d", ErrOutOfRange, index)
	}

	return nil
}

// Snapshot is a detached copy of every pit and store count.
type Snapshot struct {
	Pits   [2][]int `json:"pits"`
	Stores [2]int   `json:"stores"`
}

func (that Snapshot) Clone() Snapshot {
	return Snapshot{
		Pits: [2][]int{
			append([]int(nil), that.Pits[SideA]...),
			append([]int(nil), that.Pits[SideB]...),
		},
		Stores: that.Stores,
	}
}

func (that Snapshot) Total() int {
	total := that.Stores[SideA] + that.Stores[SideB]
	for _, row := range that.Pits {
		for _, seeds := range row {
			total += seeds
		}
	}

	return total
}
