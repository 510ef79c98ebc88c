package validations

import (
	"context"

	cubeDomain "github.com/AzielCF/az-cube/cube/domain"
	domainScramble "github.com/AzielCF/az-cube/domains/scramble"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const MaxScrambleLength = 100

func cubeTypeValues() []any {
	out := make([]any, len(cubeDomain.CubeTypes))
	for i, c := range cubeDomain.CubeTypes {
		out[i] = string(c)
	}
	return out
}

// ValidateScrambleRequest accepts zero values, which mean "use the default".
func ValidateScrambleRequest(ctx context.Context, request domainScramble.GenerateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Length, validation.Min(0), validation.Max(MaxScrambleLength)),
		validation.Field(&request.CubeType, validation.In(cubeTypeValues()...)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
