package client

import (
	"fmt"

	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/wire"
)

// Callbacks replaces the reference SDK's (function-pointer, void*) pairs
// with a struct of typed closures. Every field defaults to a no-op; set
// only the ones a caller cares about.
type Callbacks struct {
	LiveStateResponse                      func(players, maxPlayers int, name, mapName, mode, version string)
	PlayerJoined                           func(playerID int)
	PlayerLeft                             func(playerID int)
	HostInformationRequest                 func()
	ApplicationInstanceInformationRequest   func()
	ApplicationInstanceGetStatusRequest     func()
	ApplicationInstanceSetStatusRequest     func(status int)
}

func defaultCallbacks() Callbacks {
	return Callbacks{
		LiveStateResponse:                    func(int, int, string, string, string, string) {},
		PlayerJoined:                         func(int) {},
		PlayerLeft:                           func(int) {},
		HostInformationRequest:               func() {},
		ApplicationInstanceInformationRequest: func() {},
		ApplicationInstanceGetStatusRequest:   func() {},
		ApplicationInstanceSetStatusRequest:   func(int) {},
	}
}

// merge overwrites only the non-nil fields of override onto the receiver,
// so SetCallbacks(Callbacks{PlayerJoined: f}) doesn't clobber the rest.
func (c Callbacks) merge(override Callbacks) Callbacks {
	if override.LiveStateResponse != nil {
		c.LiveStateResponse = override.LiveStateResponse
	}
	if override.PlayerJoined != nil {
		c.PlayerJoined = override.PlayerJoined
	}
	if override.PlayerLeft != nil {
		c.PlayerLeft = override.PlayerLeft
	}
	if override.HostInformationRequest != nil {
		c.HostInformationRequest = override.HostInformationRequest
	}
	if override.ApplicationInstanceInformationRequest != nil {
		c.ApplicationInstanceInformationRequest = override.ApplicationInstanceInformationRequest
	}
	if override.ApplicationInstanceGetStatusRequest != nil {
		c.ApplicationInstanceGetStatusRequest = override.ApplicationInstanceGetStatusRequest
	}
	if override.ApplicationInstanceSetStatusRequest != nil {
		c.ApplicationInstanceSetStatusRequest = override.ApplicationInstanceSetStatusRequest
	}
	return c
}

// dispatch invokes the callback matching msg's opcode. Messages with no
// matching opcode (including any the façade doesn't expect on this side)
// are silently ignored, matching the reference implementation's default
// case.
func dispatch(cb Callbacks, msg *message.Message) error {
	switch msg.Code {
	case wire.OpcodeLiveStateResponse:
		players, err := msg.Payload.GetInt("players")
		if err != nil {
			return fmt.Errorf("live_state_response: %w", err)
		}
		maxPlayers, err := msg.Payload.GetInt("max_players")
		if err != nil {
			return fmt.Errorf("live_state_response: %w", err)
		}
		name, _ := msg.Payload.GetString("name")
		mapName, _ := msg.Payload.GetString("map")
		mode, _ := msg.Payload.GetString("mode")
		version, _ := msg.Payload.GetString("version")
		cb.LiveStateResponse(int(players), int(maxPlayers), name, mapName, mode, version)
	case wire.OpcodePlayerJoinedEventResponse:
		id, err := msg.Payload.GetInt("player_id")
		if err != nil {
			return fmt.Errorf("player_joined_event_response: %w", err)
		}
		cb.PlayerJoined(int(id))
	case wire.OpcodePlayerLeftResponse:
		id, err := msg.Payload.GetInt("player_id")
		if err != nil {
			return fmt.Errorf("player_left_response: %w", err)
		}
		cb.PlayerLeft(int(id))
	case wire.OpcodeHostInformationRequest:
		cb.HostInformationRequest()
	case wire.OpcodeApplicationInstanceInformationRequest:
		cb.ApplicationInstanceInformationRequest()
	case wire.OpcodeApplicationInstanceGetStatusRequest:
		cb.ApplicationInstanceGetStatusRequest()
	case wire.OpcodeApplicationInstanceSetStatusRequest:
		status, err := msg.Payload.GetInt("status")
		if err != nil {
			return fmt.Errorf("application_instance_set_status_request: %w", err)
		}
		cb.ApplicationInstanceSetStatusRequest(int(status))
	}
	return nil
}
