package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const ticketNumberPrefix = "TKT"

// nextTicketNumber generates a date-prefixed ticket number: "TKT" + two-digit
// year + two-digit month + four-digit sequence. The sequence is one past the
// highest existing sequence among loaded tickets sharing the month prefix,
// starting at 1 for a fresh month.
func (c *TicketCache) nextTicketNumber(now time.Time) string {
	prefix := fmt.Sprintf("%s%02d%02d", ticketNumberPrefix, now.Year()%100, int(now.Month()))

	c.mu.RLock()
	highest := 0
	for i := range c.list {
		number := c.list[i].TicketNumber
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		seq, err := strconv.Atoi(number[len(number)-4:])
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	c.mu.RUnlock()

	return fmt.Sprintf("%s%04d", prefix, highest+1)
}
