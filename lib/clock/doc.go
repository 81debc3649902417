// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The storage engine stamps every namespace mutation with a modification
// time. Production code injects [Real]; tests inject [Fake] and move time
// explicitly with [FakeClock.Advance], so listings and stat output are
// deterministic.
//
//	engine, err := engine.New(engine.Config{Clock: clock.Real(), ...})
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	engine, err := engine.New(engine.Config{Clock: fake, ...})
//	fake.Advance(time.Minute)
package clock
