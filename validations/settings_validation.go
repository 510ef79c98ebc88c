package validations

import (
	"context"
	"fmt"

	settingsDomain "github.com/AzielCF/az-cube/core/settings/domain"
	domainSettings "github.com/AzielCF/az-cube/domains/settings"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidateSettingsUpdate rejects unknown keys and scramble lengths the UI cannot show.
// Type coercion itself happens in the store.
func ValidateSettingsUpdate(ctx context.Context, request domainSettings.UpdateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Values, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	for key, value := range request.Values {
		if !settingsDomain.IsKnown(key) {
			return pkgError.ValidationError(fmt.Sprintf("unknown setting %q", key))
		}
		if key != settingsDomain.KeyScrambleLength {
			continue
		}
		n, err := settingsDomain.Coerce(key, value)
		if err != nil {
			return err
		}
		if err := validation.Validate(n, validation.Max(MaxScrambleLength)); err != nil {
			return pkgError.ValidationError(fmt.Sprintf("%s: %v", key, err))
		}
	}

	return nil
}
