package utils

import (
	"fmt"
	"runtime"
)

// Config represents the configuration for proof generation
type Config struct {
	// Number of worker goroutines for within-round reductions and
	// multi-exponentiations. Rounds themselves are sequential; only the
	// reduction inside a round is spread across workers.
	NbTasks int

	// Hash function for the Fiat-Shamir transcript
	HashFunction string
}

// DefaultConfig returns a default prover configuration
func DefaultConfig() *Config {
	return &Config{
		NbTasks:      runtime.NumCPU(),
		HashFunction: "sha3",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.NbTasks <= 0 {
		return fmt.Errorf("number of tasks must be positive, got %d", c.NbTasks)
	}
	if c.HashFunction != "sha256" && c.HashFunction != "sha3" {
		return fmt.Errorf("hash function must be 'sha256' or 'sha3', got '%s'", c.HashFunction)
	}
	return nil
}

// WithNbTasks sets the worker count
func (c *Config) WithNbTasks(n int) *Config {
	c.NbTasks = n
	return c
}

// WithHashFunction sets the transcript hash function
func (c *Config) WithHashFunction(h string) *Config {
	c.HashFunction = h
	return c
}
