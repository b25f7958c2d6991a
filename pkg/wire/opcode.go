// Package wire defines the on-the-wire constants of the Arcus protocol:
// the frame header, the handshake hello, and the closed opcode enum.
package wire

// Opcode identifies the kind of a Message. The set is closed: any byte value
// not named here is rejected by the codec with ErrInvalidHeader.
type Opcode byte

// Supported opcodes, per the wire contract in the specification.
const (
	OpcodeHello Opcode = iota
	OpcodeSoftStop
	OpcodeAllocated
	OpcodeMetadata
	OpcodeLiveStateRequest
	OpcodeLiveStateResponse
	OpcodeHostInformationRequest
	OpcodeHostInformationResponse
	OpcodeApplicationInstanceInformationRequest
	OpcodeApplicationInstanceInformationResponse
	OpcodeApplicationInstanceGetStatusRequest
	OpcodeApplicationInstanceGetStatusResponse
	OpcodeApplicationInstanceSetStatusRequest
	OpcodeApplicationInstanceSetStatusResponse
	OpcodePlayerJoinedEventResponse
	OpcodePlayerLeftResponse
	OpcodeHealth
)

var opcodeNames = map[Opcode]string{
	OpcodeHello:                          "hello",
	OpcodeSoftStop:                       "soft_stop",
	OpcodeAllocated:                      "allocated",
	OpcodeMetadata:                       "metadata",
	OpcodeLiveStateRequest:               "live_state_request",
	OpcodeLiveStateResponse:              "live_state_response",
	OpcodeHostInformationRequest:         "host_information_request",
	OpcodeHostInformationResponse:        "host_information_response",
	OpcodeApplicationInstanceInformationRequest:  "application_instance_information_request",
	OpcodeApplicationInstanceInformationResponse: "application_instance_information_response",
	OpcodeApplicationInstanceGetStatusRequest:    "application_instance_get_status_request",
	OpcodeApplicationInstanceGetStatusResponse:   "application_instance_get_status_response",
	OpcodeApplicationInstanceSetStatusRequest:    "application_instance_set_status_request",
	OpcodeApplicationInstanceSetStatusResponse:   "application_instance_set_status_response",
	OpcodePlayerJoinedEventResponse:      "player_joined_event_response",
	OpcodePlayerLeftResponse:             "player_left_response",
	OpcodeHealth:                         "health",
}

// String implements fmt.Stringer, returning the wire name of the opcode or
// "unknown" for an unsupported value.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "unknown"
}

// IsSupported reports whether o is one of the closed set of opcodes the
// codec will accept in a received Header.
func IsSupported(o Opcode) bool {
	_, ok := opcodeNames[o]
	return ok
}
