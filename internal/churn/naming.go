package churn

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	fileNamePrefix = "file_"
	fileNameSuffix = ".txt"
)

// FileName returns the managed file name for counter n (file_0007.txt).
func FileName(n int64) string {
	return fmt.Sprintf("%s%04d%s", fileNamePrefix, n, fileNameSuffix)
}

// FileContent returns the placeholder body written for counter n.
func FileContent(n int64) string {
	return "Content of file " + strconv.FormatInt(n, 10)
}

// ParseFileName extracts the counter from a managed file name.
func ParseFileName(name string) (int64, bool) {
	if !strings.HasPrefix(name, fileNamePrefix) || !strings.HasSuffix(name, fileNameSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, fileNamePrefix), fileNameSuffix)
	if len(digits) < 4 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 || FileName(n) != name {
		return 0, false
	}
	return n, true
}
