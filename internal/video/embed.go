// Package video describes the hand-off to the external video-conferencing
// embed and the navigation around it.
package video

import (
	"errors"
	"fmt"
	"net/url"
)

const maxRoomIDLength = 128

var ErrInvalidRoom = errors.New("invalid room")

// CommunityRooms are the standing drop-in rooms listed on the join page.
var CommunityRooms = []string{"Addiction", "Anxiety", "LGBTQ"}

// Embed is everything the video widget needs to join a room.
type Embed struct {
	Domain          string         `json:"domain"`
	RoomID          string         `json:"room_id"`
	DisplayName     string         `json:"display_name"`
	MeetingURL      string         `json:"meeting_url"`
	Config          map[string]any `json:"config"`
	InterfaceConfig map[string]any `json:"interface_config"`
}

// Options holds the deployment-wide embed settings.
type Options struct {
	Domain      string
	DisplayName string
}

// NewEmbed validates roomID and builds the embed description.
func NewEmbed(opts Options, roomID string) (Embed, error) {
	if err := ValidateRoom(roomID); err != nil {
		return Embed{}, err
	}
	displayName := opts.DisplayName
	if displayName == "" {
		displayName = "Anonymous"
	}
	return Embed{
		Domain:      opts.Domain,
		RoomID:      roomID,
		DisplayName: displayName,
		MeetingURL:  (&url.URL{Scheme: "https", Host: opts.Domain, Path: "/" + roomID}).String(),
		Config: map[string]any{
			"startWithAudioMuted":       true,
			"disableModeratorIndicator": true,
			"startScreenSharing":        true,
			"enableEmailInStats":        false,
		},
		InterfaceConfig: map[string]any{
			"DISABLE_JOIN_LEAVE_NOTIFICATIONS": false,
		},
	}, nil
}

// ValidateRoom accepts non-empty ids made of letters, digits, '-' and '_'.
func ValidateRoom(roomID string) error {
	if roomID == "" {
		return fmt.Errorf("%w: room id is empty", ErrInvalidRoom)
	}
	if len(roomID) > maxRoomIDLength {
		return fmt.Errorf("%w: room id longer than %d characters", ErrInvalidRoom, maxRoomIDLength)
	}
	for _, c := range roomID {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidRoom, c)
		}
	}
	return nil
}
