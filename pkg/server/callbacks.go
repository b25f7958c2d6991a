package server

import (
	"fmt"

	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/wire"
)

// Callbacks replaces the reference SDK's (function-pointer, void*) pairs
// with a struct of typed closures. Every field defaults to a no-op; set
// only the ones a caller cares about.
type Callbacks struct {
	SoftStop                               func(timeoutSeconds int)
	Allocated                              func(players []interface{})
	MetaData                               func(data *message.Payload)
	LiveStateRequest                       func()
	HostInformationResponse                func(data *message.Payload)
	ApplicationInstanceInformationResponse func(data *message.Payload)
	ApplicationInstanceGetStatusResponse    func(status int)
	ApplicationInstanceSetStatusResponse    func(success bool)
}

func defaultCallbacks() Callbacks {
	return Callbacks{
		SoftStop:                                func(int) {},
		Allocated:                               func([]interface{}) {},
		MetaData:                                func(*message.Payload) {},
		LiveStateRequest:                        func() {},
		HostInformationResponse:                 func(*message.Payload) {},
		ApplicationInstanceInformationResponse:  func(*message.Payload) {},
		ApplicationInstanceGetStatusResponse:    func(int) {},
		ApplicationInstanceSetStatusResponse:    func(bool) {},
	}
}

// merge overwrites only the non-nil fields of override onto the receiver,
// so SetCallbacks(Callbacks{Allocated: f}) doesn't clobber the rest.
func (c Callbacks) merge(override Callbacks) Callbacks {
	if override.SoftStop != nil {
		c.SoftStop = override.SoftStop
	}
	if override.Allocated != nil {
		c.Allocated = override.Allocated
	}
	if override.MetaData != nil {
		c.MetaData = override.MetaData
	}
	if override.LiveStateRequest != nil {
		c.LiveStateRequest = override.LiveStateRequest
	}
	if override.HostInformationResponse != nil {
		c.HostInformationResponse = override.HostInformationResponse
	}
	if override.ApplicationInstanceInformationResponse != nil {
		c.ApplicationInstanceInformationResponse = override.ApplicationInstanceInformationResponse
	}
	if override.ApplicationInstanceGetStatusResponse != nil {
		c.ApplicationInstanceGetStatusResponse = override.ApplicationInstanceGetStatusResponse
	}
	if override.ApplicationInstanceSetStatusResponse != nil {
		c.ApplicationInstanceSetStatusResponse = override.ApplicationInstanceSetStatusResponse
	}
	return c
}

// dispatch invokes the callback matching msg's opcode. Messages with no
// matching opcode (including any the façade doesn't expect on this side)
// are silently ignored, matching the reference implementation's default
// case.
func dispatch(cb Callbacks, msg *message.Message) error {
	switch msg.Code {
	case wire.OpcodeSoftStop:
		timeout, err := msg.Payload.GetInt("timeout")
		if err != nil {
			return fmt.Errorf("soft_stop: %w", err)
		}
		cb.SoftStop(int(timeout))
	case wire.OpcodeAllocated:
		players, err := msg.Payload.GetArray("players")
		if err != nil {
			return fmt.Errorf("allocated: %w", err)
		}
		cb.Allocated(players)
	case wire.OpcodeMetadata:
		cb.MetaData(msg.Payload)
	case wire.OpcodeLiveStateRequest:
		cb.LiveStateRequest()
	case wire.OpcodeHostInformationResponse:
		cb.HostInformationResponse(msg.Payload)
	case wire.OpcodeApplicationInstanceInformationResponse:
		cb.ApplicationInstanceInformationResponse(msg.Payload)
	case wire.OpcodeApplicationInstanceGetStatusResponse:
		status, err := msg.Payload.GetInt("status")
		if err != nil {
			return fmt.Errorf("application_instance_get_status_response: %w", err)
		}
		cb.ApplicationInstanceGetStatusResponse(int(status))
	case wire.OpcodeApplicationInstanceSetStatusResponse:
		success, err := msg.Payload.GetBool("success")
		if err != nil {
			return fmt.Errorf("application_instance_set_status_response: %w", err)
		}
		cb.ApplicationInstanceSetStatusResponse(success)
	}
	return nil
}
