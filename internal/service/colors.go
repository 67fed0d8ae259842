package service

import (
	"fmt"
	"hash/fnv"
)

const (
	legendFontColor = "#333"
	legendFontSize  = 12
)

// reasonColor derives a stable chart color from the reason label.
func reasonColor(reason string) string {
	h := fnv.New32a()
	h.Write([]byte(reason))
	sum := h.Sum32()
	return fmt.Sprintf("rgb(%d, %d, %d)", (sum>>16)&0xff, (sum>>8)&0xff, sum&0xff)
}
