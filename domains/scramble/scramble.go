package scramble

import "context"

type Source string

const (
	SourceLocal    Source = "local"
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

type GenerateRequest struct {
	Length   int    `json:"length" query:"length"`
	CubeType string `json:"cube_type" query:"cube_type"`
}

type GenerateResponse struct {
	Scramble string `json:"scramble"`
	Length   int    `json:"length"`
	CubeType string `json:"cube_type"`
	Source   Source `json:"source"`
}

type IScrambleUsecase interface {
	Generate(ctx context.Context, request GenerateRequest) (GenerateResponse, error)
	// Fetch always returns a scramble: a failing remote falls back to the local generator.
	Fetch(ctx context.Context, length int, cubeType string) string
}
