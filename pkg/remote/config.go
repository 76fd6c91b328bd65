package remote

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlKeymaps represents the YAML structure of a keymap file.
type yamlKeymaps struct {
	Remotes []yamlRemote `yaml:"remotes"`
}

// yamlRemote represents a single remote in YAML format.
type yamlRemote struct {
	Name     string            `yaml:"name"`
	Protocol string            `yaml:"protocol"`
	Address  string            `yaml:"address"`
	Mappings map[string]string `yaml:"mappings"`
}

// LoadKeymaps reads remote tables from a YAML keymap file.
//
// File format:
//
//	remotes:
//	  - name: living_room
//	    protocol: NEC
//	    address: "0x32"
//	    mappings:
//	      "0x11": CHANNEL_UP
//	      "0x14": CHANNEL_DOWN
func LoadKeymaps(path string) ([]Remote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keymap file: %w", err)
	}
	remotes, err := ParseKeymaps(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return remotes, nil
}

// ParseKeymaps parses remote tables from YAML keymap data.
func ParseKeymaps(data []byte) ([]Remote, error) {
	var y yamlKeymaps
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}

	remotes := make([]Remote, 0, len(y.Remotes))
	for i, yr := range y.Remotes {
		if yr.Name == "" {
			return nil, fmt.Errorf("remote %d: missing name", i)
		}
		if yr.Protocol == "" {
			return nil, fmt.Errorf("remote %q: missing protocol", yr.Name)
		}
		if yr.Address == "" {
			return nil, fmt.Errorf("remote %q: missing address", yr.Name)
		}
		if len(yr.Mappings) == 0 {
			return nil, fmt.Errorf("remote %q: no mappings", yr.Name)
		}

		mappings := make(map[string]Event, len(yr.Mappings))
		for command, event := range yr.Mappings {
			if event == "" {
				return nil, fmt.Errorf("remote %q: command %s maps to empty event", yr.Name, command)
			}
			mappings[command] = Event(event)
		}

		remotes = append(remotes, Remote{
			Name:     yr.Name,
			Protocol: yr.Protocol,
			Address:  yr.Address,
			Mappings: mappings,
		})
	}

	return remotes, nil
}
