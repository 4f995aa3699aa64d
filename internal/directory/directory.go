// Package directory holds the registry of response teams and region-wide
// devices. The registry is loaded from a configuration file at startup and
// injected into the dispatcher; it is read-only afterwards.
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

type Directory struct {
	groups  map[models.ActionKind]models.RecipientGroup
	devices []string
}

// file is the on-disk shape of the directory configuration.
type file struct {
	Teams         map[string]models.RecipientGroup `json:"teams"`
	RegionDevices []string                         `json:"region_devices"`
}

var requiredActions = []models.ActionKind{
	models.ActionEvacuation,
	models.ActionAlert,
	models.ActionResourceRequest,
	models.ActionAllClear,
}

// Load reads and validates the directory configuration file.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading directory file: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing directory file: %w", err)
	}

	groups := make(map[models.ActionKind]models.RecipientGroup, len(f.Teams))
	for key, group := range f.Teams {
		groups[models.ActionKind(key)] = group
	}

	return New(groups, f.RegionDevices)
}

// New builds a directory from already-parsed configuration, validating that
// every action kind has a usable team.
func New(groups map[models.ActionKind]models.RecipientGroup, devices []string) (*Directory, error) {
	for _, action := range requiredActions {
		group, ok := groups[action]
		if !ok {
			return nil, fmt.Errorf("directory missing team for action %q", action)
		}
		if err := validateGroup(action, group); err != nil {
			return nil, err
		}
	}
	for i, dev := range devices {
		if strings.TrimSpace(dev) == "" {
			return nil, fmt.Errorf("region device %d is empty", i)
		}
	}

	d := &Directory{
		groups:  make(map[models.ActionKind]models.RecipientGroup, len(requiredActions)),
		devices: append([]string(nil), devices...),
	}
	for _, action := range requiredActions {
		d.groups[action] = groups[action]
	}
	return d, nil
}

func validateGroup(action models.ActionKind, group models.RecipientGroup) error {
	if group.TeamName == "" {
		return fmt.Errorf("team for action %q has no name", action)
	}
	if err := validateContact(group.Lead); err != nil {
		return fmt.Errorf("team %q lead: %w", group.TeamName, err)
	}
	for i, m := range group.Members {
		if err := validateContact(m); err != nil {
			return fmt.Errorf("team %q member %d: %w", group.TeamName, i, err)
		}
	}
	return nil
}

func validateContact(c models.Contact) error {
	if c.Name == "" {
		return fmt.Errorf("contact has no name")
	}
	if c.Phone == "" {
		return fmt.Errorf("contact %q has no phone number", c.Name)
	}
	if c.Email == "" {
		return fmt.Errorf("contact %q has no email address", c.Name)
	}
	return nil
}

// GroupFor returns the team responsible for an action kind.
func (d *Directory) GroupFor(action models.ActionKind) (models.RecipientGroup, error) {
	group, ok := d.groups[action]
	if !ok {
		return models.RecipientGroup{}, fmt.Errorf("no team for action %q", action)
	}
	return group, nil
}

// RegionDevices returns the region-wide device identifiers in declared
// order. Identifiers starting with "+" are phone numbers (SMS-capable);
// anything else is a push-capable device id.
func (d *Directory) RegionDevices() []string {
	return append([]string(nil), d.devices...)
}

// IsPhoneDevice reports whether a region device identifier is a phone
// number rather than a push device id.
func IsPhoneDevice(id string) bool {
	return strings.HasPrefix(id, "+")
}
