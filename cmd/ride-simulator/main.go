// ride-simulator streams synthetic motion telemetry at a crashguard UDP
// ingest address. Profiles cover a steady cruise, a hard-but-controlled brake,
// and a crash impulse, which is enough to exercise the candidate, retraction,
// and countdown paths end to end from a shell.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"net"
	"time"

	"github.com/ridepulse-app/crashguard/internal/motion"
)

var (
	target   = flag.String("target", "127.0.0.1:9911", "crashguard UDP ingest address")
	profile  = flag.String("profile", "cruise", "Ride profile: cruise, brake, or crash")
	rate     = flag.Int("rate", 20, "Samples per second")
	duration = flag.Duration("duration", 30*time.Second, "How long to stream before exiting")
)

func main() {
	flag.Parse()

	conn, err := net.Dial("udp", *target)
	if err != nil {
		log.Fatalf("failed to dial %s: %v", *target, err)
	}
	defer conn.Close()

	gen, ok := profiles[*profile]
	if !ok {
		log.Fatalf("unknown profile %q (want cruise, brake, or crash)", *profile)
	}

	interval := time.Second / time.Duration(*rate)
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("streaming %s profile to %s at %d Hz for %s", *profile, *target, *rate, *duration)
	sent := 0
	for now := range ticker.C {
		elapsed := now.Sub(start)
		if elapsed > *duration {
			break
		}

		sample := gen(now, elapsed.Seconds())
		data, err := json.Marshal(sample)
		if err != nil {
			log.Fatalf("failed to marshal sample: %v", err)
		}
		if _, err := conn.Write(data); err != nil {
			log.Fatalf("failed to send sample: %v", err)
		}
		sent++
	}
	log.Printf("sent %d samples", sent)
}

// generator produces a sample for wall time now, t seconds into the run.
type generator func(now time.Time, t float64) motion.MotionSample

var profiles = map[string]generator{
	"cruise": cruise,
	"brake":  brake,
	"crash":  crash,
}

func baseSample(now time.Time, speed float64) motion.MotionSample {
	return motion.MotionSample{
		WallTime:       now,
		MonotonicNanos: now.UnixNano(),
		AccelX:         jitter(0.3),
		AccelY:         jitter(0.3),
		AccelZ:         9.81 + jitter(0.5),
		GyroX:          jitter(0.05),
		GyroY:          jitter(0.05),
		GyroZ:          jitter(0.05),
		SpeedMps:       speed,
		Location:       &motion.Location{Latitude: 37.33, Longitude: -121.89},
	}
}

func cruise(now time.Time, t float64) motion.MotionSample {
	return baseSample(now, 27+jitter(1))
}

// brake ramps speed down firmly over a few seconds. It should raise the
// deceleration score but stay below the trigger threshold with default tuning.
func brake(now time.Time, t float64) motion.MotionSample {
	speed := 27.0
	if t > 5 {
		speed = max(27-4*(t-5), 0)
	}
	s := baseSample(now, speed)
	if t > 5 && speed > 0 {
		s.AccelX -= 4
	}
	return s
}

// crash cruises for five seconds, then delivers a one-second impact impulse
// with a speed collapse, then lies still.
func crash(now time.Time, t float64) motion.MotionSample {
	switch {
	case t < 5:
		return baseSample(now, 27+jitter(1))
	case t < 6:
		s := baseSample(now, 2)
		s.AccelX = 50 + jitter(10)
		s.AccelY = 35 + jitter(10)
		s.AccelZ = 40 + jitter(10)
		s.GyroX = 3 + jitter(1)
		return s
	default:
		s := baseSample(now, 0)
		s.AccelZ = 9.81 + jitter(0.1)
		return s
	}
}

func jitter(scale float64) float64 {
	return (rand.Float64()*2 - 1) * scale
}
