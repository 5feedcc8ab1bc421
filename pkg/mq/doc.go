// Package mq provides the RabbitMQ messaging layer shared by all services.
//
// Three durable topic exchanges carry all traffic: device.events for domain
// events, device.commands for commands dispatched to drones, and device.data
// for telemetry. Every message body is a JSON Envelope. A nil *Client is a
// valid no-op client, so services run unchanged when AMQP_URL is unset.
package mq
