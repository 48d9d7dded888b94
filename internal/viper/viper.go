// Package viper holds the configuration instance shared by the
// imagesize commands. Keeping it off Viper's global instance means
// programs embedding the sizecheck library are never affected by it.
package viper

import (
	"sync"

	spfviper "github.com/spf13/viper"
)

var (
	instance *spfviper.Viper
	mu       = sync.Mutex{}
)

// Instance returns the shared Viper instance, lazily creating it on
// first use.
func Instance() *spfviper.Viper {
	if instance != nil {
		return instance
	}

	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = spfviper.New()
	}
	return instance
}
