package validations

import (
	"context"

	domainSolve "github.com/AzielCF/az-cube/domains/solve"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func ValidateSubmitSolve(ctx context.Context, request domainSolve.SubmitRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ID, is.UUID),
		validation.Field(&request.Time, validation.Min(0.0)),
		validation.Field(&request.Scramble, validation.Length(0, 1000)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if request.DNF && request.Plus2 {
		return pkgError.ValidationError("dnf and plus2 are mutually exclusive")
	}

	return nil
}

func ValidateDeleteMany(ctx context.Context, request domainSolve.DeleteManyRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Indices, validation.Required, validation.Each(validation.Min(0))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
