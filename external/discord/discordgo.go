package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/foxseedlab/boothscan/internal/alert"
)

// AlertChannel posts flagged scans to a Discord text channel through the REST
// API. No gateway connection is opened.
type AlertChannel struct {
	session   *discordgo.Session
	channelID string
}

func NewAlertChannel(token, channelID string) (*AlertChannel, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	return &AlertChannel{session: s, channelID: channelID}, nil
}

func (c *AlertChannel) SendFlaggedScan(ctx context.Context, a alert.FlaggedScan) error {
	_, err := c.session.ChannelMessageSend(c.channelID, formatFlaggedScan(a), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post discord alert: %w", err)
	}
	return nil
}

func formatFlaggedScan(a alert.FlaggedScan) string {
	lines := []string{fmt.Sprintf(":warning: **%s** `%s`", a.Status, a.AttendeeName)}
	if a.LocationName != "" {
		lines = append(lines, fmt.Sprintf("Scanned at: %s", a.LocationName))
	}
	if a.SessionName != "" {
		lines = append(lines, fmt.Sprintf("Session: %s", a.SessionName))
	}
	if a.ExpectedLocationName != "" {
		lines = append(lines, fmt.Sprintf("Expected at: %s", a.ExpectedLocationName))
	}
	if a.RegistrationRequired {
		lines = append(lines, "Registration is required for this session.")
	}
	lines = append(lines, fmt.Sprintf("-# scan %s at %s", a.ScanID, a.ScannedAt.Format("2006-01-02 15:04:05 MST")))
	return strings.Join(lines, "\n")
}
