package world

// Direction is one of the six cube faces.
type Direction uint8

const (
	Down Direction = iota
	Up
	North
	South
	West
	East

	NumDirections = 6
)

var directionNormals = [NumDirections][3]int{
	{0, -1, 0},
	{0, 1, 0},
	{0, 0, -1},
	{0, 0, 1},
	{-1, 0, 0},
	{1, 0, 0},
}

var directionNames = [NumDirections]string{"down", "up", "north", "south", "west", "east"}

// Directions lists all faces in ordinal order.
var Directions = [NumDirections]Direction{Down, Up, North, South, West, East}

// Horizontals lists the four faces perpendicular to the Y axis.
var Horizontals = [4]Direction{North, South, West, East}

// Normal returns the unit offset of the face.
func (d Direction) Normal() [3]int {
	return directionNormals[d]
}

func (d Direction) Opposite() Direction {
	return d ^ 1
}

func (d Direction) String() string {
	if d < NumDirections {
		return directionNames[d]
	}
	return "invalid"
}
