package settings

import (
	"context"

	settingsDomain "github.com/AzielCF/az-cube/core/settings/domain"
)

type UpdateRequest struct {
	Values map[string]any `json:"values"`
}

type ISettingsUsecase interface {
	All(ctx context.Context) map[string]any
	Effective(ctx context.Context) settingsDomain.Effective
	Update(ctx context.Context, request UpdateRequest) (map[string]any, error)
	Reset(ctx context.Context) (map[string]any, error)
	Subscribe() (<-chan settingsDomain.Change, func())
}
