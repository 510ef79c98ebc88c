package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/AzielCF/az-cube/core/settings/domain"
	"github.com/AzielCF/az-cube/infrastructure/valkey"
	"github.com/sirupsen/logrus"
)

const channelSettings = "settings"

// ValkeyNotifier fans settings changes out to every instance through Valkey pub/sub.
type ValkeyNotifier struct {
	client *valkey.Client
}

func NewValkeyNotifier(client *valkey.Client) *ValkeyNotifier {
	return &ValkeyNotifier{client: client}
}

func (n *ValkeyNotifier) Publish(ctx context.Context, change domain.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, channelSettings, data)
}

func (n *ValkeyNotifier) Listen(ctx context.Context, fn func(domain.Change)) error {
	return n.client.Subscribe(ctx, channelSettings, func(payload []byte) {
		var change domain.Change
		if err := json.Unmarshal(payload, &change); err != nil {
			logrus.Warnf("[SETTINGS] discarding malformed remote change: %v", err)
			return
		}
		fn(change)
	})
}
