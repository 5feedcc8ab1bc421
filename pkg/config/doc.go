// Package config loads aiot-in-go configuration from /etc/aiot/config/aiot.yml
// with environment variable overrides, tracking the source of each value.
package config
