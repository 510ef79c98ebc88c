package validations

import (
	"context"

	domainSolver "github.com/AzielCF/az-cube/domains/solver"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateSolverRequest(ctx context.Context, request domainSolver.SolveRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.CubeState, validation.Required, validation.Length(6, 6)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
