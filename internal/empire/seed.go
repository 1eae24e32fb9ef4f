package empire

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"beatempire/internal/store"
	"beatempire/pkg/domain"
)

type channelSeedFile struct {
	Channels []struct {
		Name           string `yaml:"name"`
		ExternalID     string `yaml:"external_id"`
		Specialization string `yaml:"specialization"`
		Schedule       string `yaml:"schedule"`
	} `yaml:"channels"`
}

func defaultChannels(now time.Time) []domain.Channel {
	mk := func(name, specialization, schedule string) domain.Channel {
		return domain.Channel{
			Name:           name,
			Specialization: specialization,
			Schedule:       schedule,
			Status:         domain.ChannelActive,
			CreatedAt:      now,
		}
	}
	return []domain.Channel{
		mk("LoFi_Study_Beats_24_7", "Lo-Fi Hip Hop", "every_6_hours"),
		mk("Trap_Beats_Empire", "Trap", "every_8_hours"),
		mk("Chill_Vibes_Studio", "Chill Pop", "every_12_hours"),
		mk("Meditation_Sounds_AI", "Ambient", "daily"),
		mk("Electronic_Dreams_24_7", "Deep House", "every_6_hours"),
	}
}

// SeedChannels inserts missing channels. An existing channel row is never
// overwritten, so hand edits to specialization or status survive restarts.
// When seedPath names a YAML file its channels replace the built-in set.
func SeedChannels(s store.Store, seedPath string, now time.Time) error {
	channels := defaultChannels(now)
	if seedPath != "" {
		data, err := os.ReadFile(seedPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read channel seed: %w", err)
		}
		if err == nil {
			var seed channelSeedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("parse channel seed: %w", err)
			}
			if len(seed.Channels) > 0 {
				channels = channels[:0]
				for _, c := range seed.Channels {
					if c.Name == "" || c.Specialization == "" {
						return fmt.Errorf("channel seed entry needs name and specialization")
					}
					channels = append(channels, domain.Channel{
						Name:           c.Name,
						ExternalID:     c.ExternalID,
						Specialization: c.Specialization,
						Schedule:       c.Schedule,
						Status:         domain.ChannelActive,
						CreatedAt:      now,
					})
				}
			}
		}
	}

	for _, c := range channels {
		_, exists, err := s.GetChannel(c.Name)
		if err != nil {
			return fmt.Errorf("check channel %s: %w", c.Name, err)
		}
		if exists {
			continue
		}
		if err := s.SaveChannel(c); err != nil {
			return fmt.Errorf("seed channel %s: %w", c.Name, err)
		}
	}
	return nil
}
