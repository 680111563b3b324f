// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

// Package mqtttest provides an in-memory MQTT client for tests.
package mqtttest

import (
	"strings"
	"sync"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
)

// Message is a published or delivered message.
type Message struct {
	TopicName string
	Body      []byte
	Retain    bool
}

var _ mqttapi.Message = Message{}

func (m Message) Duplicate() bool   { return false }
func (m Message) Qos() byte         { return 0 }
func (m Message) Retained() bool    { return m.Retain }
func (m Message) Topic() string     { return m.TopicName }
func (m Message) MessageID() uint16 { return 0 }
func (m Message) Payload() []byte   { return m.Body }
func (m Message) Ack()              {}

// token is an already completed token.
type token struct {
	err error
}

func (t token) Wait() bool                     { return true }
func (t token) WaitTimeout(time.Duration) bool { return true }
func (t token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t token) Error() error { return t.err }

// stalledToken never completes.
type stalledToken struct{}

func (stalledToken) Wait() bool                     { return false }
func (stalledToken) WaitTimeout(time.Duration) bool { return false }
func (stalledToken) Done() <-chan struct{}          { return make(chan struct{}) }
func (stalledToken) Error() error                   { return nil }

// Client records published messages and routes delivered messages to
// its subscriptions. It does not talk to a broker.
type Client struct {
	mutex         sync.Mutex
	connected     bool
	subscriptions map[string]mqttapi.MessageHandler
	published     []Message
	stalled       bool
}

var _ mqttapi.Client = &Client{}

// NewClient returns a disconnected client.
func NewClient() *Client {
	return &Client{
		subscriptions: make(map[string]mqttapi.MessageHandler),
	}
}

func (c *Client) IsConnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.connected
}

func (c *Client) IsConnectionOpen() bool {
	return c.IsConnected()
}

func (c *Client) Connect() mqttapi.Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.connected = true
	return token{}
}

func (c *Client) Disconnect(quiesce uint) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.connected = false
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) mqttapi.Token {
	var body []byte
	switch p := payload.(type) {
	case string:
		body = []byte(p)
	case []byte:
		body = p
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.stalled {
		return stalledToken{}
	}
	c.published = append(c.published, Message{TopicName: topic, Body: body, Retain: retained})
	return token{}
}

// SetStalled makes publishes never complete (stalled=true) or complete
// immediately (stalled=false).
func (c *Client) SetStalled(stalled bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.stalled = stalled
}

func (c *Client) Subscribe(topic string, qos byte, callback mqttapi.MessageHandler) mqttapi.Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.subscriptions[topic] = callback
	return token{}
}

func (c *Client) SubscribeMultiple(filters map[string]byte, callback mqttapi.MessageHandler) mqttapi.Token {
	for topic, qos := range filters {
		c.Subscribe(topic, qos, callback)
	}
	return token{}
}

func (c *Client) Unsubscribe(topics ...string) mqttapi.Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, topic := range topics {
		delete(c.subscriptions, topic)
	}
	return token{}
}

func (c *Client) AddRoute(topic string, callback mqttapi.MessageHandler) {
	c.Subscribe(topic, 0, callback)
}

func (c *Client) OptionsReader() mqttapi.ClientOptionsReader {
	return mqttapi.ClientOptionsReader{}
}

// Deliver passes a message to all matching subscriptions.
func (c *Client) Deliver(topic, payload string) {
	c.mutex.Lock()
	var handlers []mqttapi.MessageHandler
	for filter, h := range c.subscriptions {
		if Match(filter, topic) {
			handlers = append(handlers, h)
		}
	}
	c.mutex.Unlock()

	msg := Message{TopicName: topic, Body: []byte(payload)}
	for _, h := range handlers {
		h(c, msg)
	}
}

// Published returns all messages published so far.
func (c *Client) Published() []Message {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]Message(nil), c.published...)
}

// Last returns the last message published on the given topic.
func (c *Client) Last(topic string) (Message, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for i := len(c.published) - 1; i >= 0; i-- {
		if c.published[i].TopicName == topic {
			return c.published[i], true
		}
	}
	return Message{}, false
}

// Match returns true when the topic matches the subscription filter.
func Match(filter, topic string) bool {
	fparts := strings.Split(filter, "/")
	tparts := strings.Split(topic, "/")
	for i, f := range fparts {
		if f == "#" {
			return true
		}
		if i >= len(tparts) {
			return false
		}
		if f != "+" && f != tparts[i] {
			return false
		}
	}
	return len(fparts) == len(tparts)
}
