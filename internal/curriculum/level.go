package curriculum

import "fmt"

// Level is the question difficulty tier, ordered from VeryEasy to Hard.
type Level int

const (
	VeryEasy Level = iota
	Easy
	Medium
	Challenging
	Hard
)

// MaxLevel is the highest tier.
const MaxLevel = Hard

var levelNames = [...]string{"very_easy", "easy", "medium", "challenging", "hard"}

// Levels returns every tier in ascending order.
func Levels() []Level {
	return []Level{VeryEasy, Easy, Medium, Challenging, Hard}
}

func (l Level) String() string {
	if l < VeryEasy || l > MaxLevel {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Label is the human form used in prompts and the UI ("very easy").
func (l Level) Label() string {
	switch l {
	case VeryEasy:
		return "very easy"
	default:
		return l.String()
	}
}

// Valid reports whether l is one of the five tiers.
func (l Level) Valid() bool {
	return l >= VeryEasy && l <= MaxLevel
}

// ParseLevel accepts the snake_case tier name.
func ParseLevel(s string) (Level, error) {
	for i, n := range levelNames {
		if n == s {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty level %q", s)
}

// LevelAt converts a tier index, clamping out-of-range values into
// [VeryEasy, MaxLevel].
func LevelAt(index int) Level {
	switch {
	case index < int(VeryEasy):
		return VeryEasy
	case index > int(MaxLevel):
		return MaxLevel
	}
	return Level(index)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid difficulty level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
