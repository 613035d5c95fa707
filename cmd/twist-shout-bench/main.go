// twist-shout-bench measures prover and verifier cost across instance sizes.
//
// Usage:
//
//	twist-shout-bench -protocol twist -min 4 -max 10 -tasks 8
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	twistshout "github.com/zkmem/twist-shout/pkg/twist-shout"
)

func main() {
	var (
		protocol = flag.String("protocol", "twist", "protocol to benchmark: twist or shout")
		minVars  = flag.Int("min", 4, "smallest instance size, in total variables")
		maxVars  = flag.Int("max", 10, "largest instance size, in total variables")
		tasks    = flag.Int("tasks", 0, "worker count (0 = all CPUs)")
		hashFn   = flag.String("hash", "sha3", "transcript hash: sha3 or sha256")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := twistshout.DefaultConfig().WithHashFunction(*hashFn)
	if *tasks > 0 {
		cfg = cfg.WithNbTasks(*tasks)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *minVars < 2 || *maxVars < *minVars {
		log.Fatal().Msg("need 2 <= min <= max")
	}

	log.Info().Int("maxVars", *maxVars).Msg("running trusted setup")
	setupStart := time.Now()
	pk, vk, err := twistshout.Setup(*maxVars)
	if err != nil {
		log.Fatal().Err(err).Msg("setup failed")
	}
	log.Info().Dur("took", time.Since(setupStart)).Msg("setup done")

	fmt.Printf("%-8s %-8s %-12s %-12s\n", "vars", "ops", "prove", "verify")
	for vars := *minVars; vars <= *maxVars; vars++ {
		switch *protocol {
		case "twist":
			if err := benchTwist(pk, vk, cfg, vars); err != nil {
				log.Fatal().Err(err).Int("vars", vars).Msg("twist benchmark failed")
			}
		case "shout":
			if err := benchShout(pk, vk, cfg, vars); err != nil {
				log.Fatal().Err(err).Int("vars", vars).Msg("shout benchmark failed")
			}
		default:
			log.Fatal().Str("protocol", *protocol).Msg("unknown protocol")
		}
	}
}

// benchTwist splits the variable budget evenly between time and memory and
// fills the trace with alternating writes and reads.
func benchTwist(pk *twistshout.ProverKey, vk *twistshout.VerifierKey, cfg *twistshout.Config, vars int) error {
	memVars := vars / 2
	timeSteps := 1 << (vars - memVars)
	memSize := uint64(1) << memVars

	trace, err := twistshout.NewMemoryTrace(memSize)
	if err != nil {
		return err
	}
	bar := progressbar.Default(int64(timeSteps), fmt.Sprintf("trace %d vars", vars))
	var v twistshout.FieldElement
	for t := 0; t < timeSteps; t++ {
		addr := uint64(t) % memSize
		if t%2 == 0 {
			v.SetUint64(uint64(t + 1))
			err = trace.Write(addr, v)
		} else {
			_, err = trace.Read((addr + memSize - 1) % memSize)
		}
		if err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	proveStart := time.Now()
	proof, err := twistshout.NewTwistProver(pk, cfg).Prove(trace)
	if err != nil {
		return err
	}
	proveTime := time.Since(proveStart)

	verifyStart := time.Now()
	if !twistshout.VerifyTwist(vk, proof, cfg) {
		return fmt.Errorf("benchmark proof rejected at %d vars", vars)
	}
	fmt.Printf("%-8d %-8d %-12s %-12s\n", vars, len(trace.Ops()), proveTime, time.Since(verifyStart))
	return nil
}

// benchShout uses a table of squares and a lookup sequence sweeping it.
func benchShout(pk *twistshout.ProverKey, vk *twistshout.VerifierKey, cfg *twistshout.Config, vars int) error {
	tableVars := vars / 2
	tableSize := 1 << tableVars
	lookups := 1 << (vars - tableVars)

	entries := make([]twistshout.FieldElement, tableSize)
	for i := range entries {
		entries[i].SetUint64(uint64(i * i))
	}
	table, err := twistshout.NewLookupTable(entries)
	if err != nil {
		return err
	}
	bar := progressbar.Default(int64(lookups), fmt.Sprintf("lookups %d vars", vars))
	for j := 0; j < lookups; j++ {
		if _, err := table.Lookup(uint64(j % tableSize)); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	proveStart := time.Now()
	proof, err := twistshout.NewShoutProver(pk, cfg).Prove(table)
	if err != nil {
		return err
	}
	proveTime := time.Since(proveStart)

	verifyStart := time.Now()
	if !twistshout.VerifyShout(vk, proof, cfg) {
		return fmt.Errorf("benchmark proof rejected at %d vars", vars)
	}
	fmt.Printf("%-8d %-8d %-12s %-12s\n", vars, len(table.Lookups()), proveTime, time.Since(verifyStart))
	return nil
}
