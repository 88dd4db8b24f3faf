//go:build !unix && !windows

package debug

import "errors"

func processRSS() (uint64, error) { return 0, errors.New("rss not available on this platform") }
