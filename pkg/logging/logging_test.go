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

package logging

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/binkynet/SwitchHal/pkg/mqtttest"
)

func TestMultiWriter(t *testing.T) {
	var a, b bytes.Buffer
	w := NewMultiWriter(&a, &b)
	n, err := w.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "hello", b.String())
}

func TestMQTTWriter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := mqtttest.NewClient()
	w := NewMQTTWriter(ctx)
	log := zerolog.New(w)

	// Disabled writers drop lines
	log.Info().Msg("dropped")

	w.SetDestination("switchhal/logs", client)
	w.Enable(true)
	log.Info().Str("name", "door").Msg("forwarded")

	assert.Eventually(t, func() bool {
		msg, found := client.Last("switchhal/logs")
		return found && bytes.Contains(msg.Payload(), []byte("forwarded"))
	}, time.Second*5, time.Millisecond*10)
	for _, msg := range client.Published() {
		assert.NotContains(t, string(msg.Payload()), "dropped")
	}
}
