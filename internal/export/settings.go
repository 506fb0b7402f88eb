package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zarlcorp/sensorgen/internal/device"
)

const settingsIndent = "    "

// SimulatorProfile holds the per-client settings the device simulator reads
// next to the credentials. A nil profile keeps entries to the credentials only.
type SimulatorProfile struct {
	UseTLS             bool   `json:"UseTLS"`
	Host               string `json:"Host"`
	Port               int    `json:"Port"`
	State              string `json:"State"`
	CollectionInterval int    `json:"CollectionInterval"`
	DeviceType         string `json:"DeviceType"`
}

// DefaultSimulatorProfile mirrors the simulator's own defaults.
func DefaultSimulatorProfile() SimulatorProfile {
	return SimulatorProfile{
		Host:               "localhost",
		Port:               1883,
		State:              "On",
		CollectionInterval: 5,
		DeviceType:         "Sensor",
	}
}

type settingsFile struct {
	MqttClients []mqttClient `json:"MqttClients"`
}

// mqttClient field order is the key order of the output.
type mqttClient struct {
	ClientID string `json:"ClientId"`
	Username string `json:"Username"`
	Password string `json:"Password"`
	*SimulatorProfile
}

// WriteSettings writes the simulator settings fragment:
// {"MqttClients": [{"ClientId", "Username", "Password"}, ...]} indented with
// four spaces and without a trailing newline.
func WriteSettings(w io.Writer, ids []device.Identity, profile *SimulatorProfile) error {
	doc := settingsFile{MqttClients: make([]mqttClient, 0, len(ids))}
	for _, id := range ids {
		doc.MqttClients = append(doc.MqttClients, mqttClient{
			ClientID:         id.ClientID,
			Username:         id.Username,
			Password:         id.Password,
			SimulatorProfile: profile,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", settingsIndent)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write settings: encode: %w", err)
	}

	if _, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
