package midi

// Property identifies a typed field a Descriptor's GetInt/SetInt or
// GetBytes/SetBytes may accept. Not every descriptor accepts every
// property; a descriptor rejects properties it does not own with
// ErrInvalidProperty.
type Property int

const (
	PropertyStatus Property = iota
	PropertyChannel
	PropertyKey
	PropertyVelocity
	PropertyPressure
	PropertyControl
	PropertyValue
	PropertyValueMSB
	PropertyValueLSB
	PropertyProgram
	PropertyManufacturerID
	PropertySysExSize
	PropertySysExFragment
	PropertySysExData
	PropertyTimeCodeType
)

var propertyNames = map[Property]string{
	PropertyStatus:         "status",
	PropertyChannel:        "channel",
	PropertyKey:            "key",
	PropertyVelocity:       "velocity",
	PropertyPressure:       "pressure",
	PropertyControl:        "control",
	PropertyValue:          "value",
	PropertyValueMSB:       "value_msb",
	PropertyValueLSB:       "value_lsb",
	PropertyProgram:        "program",
	PropertyManufacturerID: "manufacturer_id",
	PropertySysExSize:      "sysex_size",
	PropertySysExFragment:  "sysex_fragment",
	PropertySysExData:      "sysex_data",
	PropertyTimeCodeType:   "time_code_type",
}

func (p Property) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return "unknown"
}
