package domain

type CubeType string

const (
	Cube2x2 CubeType = "2x2"
	Cube3x3 CubeType = "3x3"
	Cube4x4 CubeType = "4x4"

	DefaultCubeType       = Cube3x3
	DefaultScrambleLength = 20
)

var CubeTypes = []CubeType{Cube2x2, Cube3x3, Cube4x4}

func (c CubeType) Valid() bool {
	switch c {
	case Cube2x2, Cube3x3, Cube4x4:
		return true
	}
	return false
}

// OrDefault returns c, or the 3x3 cube when c is not a supported puzzle.
func (c CubeType) OrDefault() CubeType {
	if c.Valid() {
		return c
	}
	return DefaultCubeType
}
