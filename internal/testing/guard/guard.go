package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("QUADRA_TEST_MODE") == "" {
			_ = os.Setenv("QUADRA_TEST_MODE", "1")
		}
	})
}
