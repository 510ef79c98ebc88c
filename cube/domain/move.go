package domain

import (
	"fmt"
	"strings"

	pkgError "github.com/AzielCF/az-cube/pkg/error"
)

// Face is one of the six canonical faces in Singmaster notation.
type Face byte

const (
	FaceU Face = 'U'
	FaceR Face = 'R'
	FaceF Face = 'F'
	FaceD Face = 'D'
	FaceL Face = 'L'
	FaceB Face = 'B'
)

// Faces is the draw order used by the scramble generator.
var Faces = []Face{FaceR, FaceL, FaceU, FaceD, FaceF, FaceB}

func (f Face) Valid() bool {
	switch f {
	case FaceU, FaceR, FaceF, FaceD, FaceL, FaceB:
		return true
	}
	return false
}

func (f Face) String() string {
	return string(rune(f))
}

// Modifier is the turn amount suffix of a move.
type Modifier string

const (
	ModifierNone   Modifier = ""
	ModifierPrime  Modifier = "'"
	ModifierDouble Modifier = "2"
)

var Modifiers = []Modifier{ModifierNone, ModifierPrime, ModifierDouble}

type Move struct {
	Face     Face
	Modifier Modifier
}

func (m Move) String() string {
	return m.Face.String() + string(m.Modifier)
}

// ParseMove reads a single token such as "R", "U'" or "F2".
func ParseMove(token string) (Move, error) {
	if token == "" || len(token) > 2 {
		return Move{}, pkgError.ValidationError(fmt.Sprintf("invalid move %q", token))
	}
	m := Move{Face: Face(token[0])}
	if !m.Face.Valid() {
		return Move{}, pkgError.ValidationError(fmt.Sprintf("invalid face in move %q", token))
	}
	if len(token) == 2 {
		switch Modifier(token[1:]) {
		case ModifierPrime, ModifierDouble:
			m.Modifier = Modifier(token[1:])
		default:
			return Move{}, pkgError.ValidationError(fmt.Sprintf("invalid modifier in move %q", token))
		}
	}
	return m, nil
}

// Sequence is an immutable scramble. Consecutive moves never share a face.
type Sequence []Move

func (s Sequence) String() string {
	tokens := make([]string, len(s))
	for i, m := range s {
		tokens[i] = m.String()
	}
	return strings.Join(tokens, " ")
}

// Valid reports whether every move is well formed and no two neighbours turn the same face.
func (s Sequence) Valid() bool {
	for i, m := range s {
		if !m.Face.Valid() {
			return false
		}
		if i > 0 && s[i-1].Face == m.Face {
			return false
		}
	}
	return true
}

// ParseSequence parses a whitespace separated scramble and enforces the adjacency rule.
func ParseSequence(raw string) (Sequence, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, pkgError.ValidationError("empty scramble")
	}
	seq := make(Sequence, 0, len(fields))
	for _, tok := range fields {
		m, err := ParseMove(tok)
		if err != nil {
			return nil, err
		}
		if n := len(seq); n > 0 && seq[n-1].Face == m.Face {
			return nil, pkgError.ValidationError(fmt.Sprintf("consecutive moves on face %s", m.Face))
		}
		seq = append(seq, m)
	}
	return seq, nil
}
