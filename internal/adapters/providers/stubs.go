package providers

import (
	"context"
	"strings"

	"github.com/datenight/planner/internal/domain/model"
)

// Stub is a provider whose integration is not built yet. It is enabled when
// its credential is configured so it shows up in provider stats, and always
// returns an empty list.
type Stub struct {
	common
}

// NewYelp returns the Yelp placeholder.
func NewYelp(apiKey string) *Stub { return newStub(model.ProviderYelp, apiKey) }

// NewTicketmaster returns the Ticketmaster placeholder.
func NewTicketmaster(apiKey string) *Stub { return newStub(model.ProviderTicketmaster, apiKey) }

// NewEventbrite returns the Eventbrite placeholder.
func NewEventbrite(token string) *Stub { return newStub(model.ProviderEventbrite, token) }

func newStub(name, credential string) *Stub {
	return &Stub{common: common{name: name, enabled: strings.TrimSpace(credential) != ""}}
}

// Search implements aggregate.Provider.
func (s *Stub) Search(context.Context, model.SearchRequest) ([]model.Venue, error) {
	return []model.Venue{}, nil
}
