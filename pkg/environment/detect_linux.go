//    Copyright 2026 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package environment

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	gpioChipDevice = "/dev/gpiochip0"
)

// DetectBridge detects the bridge to use for switches configured with the
// "auto" bridge, based on the kernel release.
func DetectBridge(log zerolog.Logger) string {
	var name unix.Utsname
	if err := unix.Uname(&name); err != nil {
		log.Warn().Err(err).Msg("Uname failed, using virtual bridge")
		return "virtual"
	}
	release := strings.TrimRight(string(name.Release[:]), "\x00")
	result := bridgeForRelease(release, fileExists(gpioChipDevice))
	log.Debug().Str("release", release).Str("bridge", result).Msg("Detected bridge")
	return result
}

// bridgeForRelease picks a bridge for the given kernel release.
func bridgeForRelease(release string, hasGPIOChip bool) string {
	release = strings.ToLower(strings.TrimSpace(release))
	switch {
	case strings.Contains(release, "rpi") || strings.Contains(release, "raspi"):
		return "rpi"
	case strings.Contains(release, "sunxi"):
		return "periph"
	case hasGPIOChip:
		return "gpiocdev"
	default:
		return "virtual"
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
