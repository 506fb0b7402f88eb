// Package device generates placeholder MQTT credentials for simulated sensors.
// Generation is deterministic: the same config always yields the same identities.
package device

// Identity holds the connection credentials of one simulated sensor.
type Identity struct {
	Index    int    `json:"index"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}
