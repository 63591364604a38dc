package utils

import (
	"log"
	"time"

	"github.com/darshakvaddoriya6/youtube-backend/config"
	"github.com/darshakvaddoriya6/youtube-backend/models"
)

// StartViewLedgerPruner launches a background goroutine that periodically
// deletes stale anonymous view ledger rows. Authenticated rows are kept
// forever (they carry the per-user dedup state); anonymous rows only matter
// within the cooldown window, so anything older than the retention horizon is
// dead weight. Best-effort, failures are logged and retried next round.
func StartViewLedgerPruner(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			c := config.Get()
			horizon := time.Now().Add(-time.Duration(c.ViewRetentionHours) * time.Hour)
			res := db.Where("user_id IS NULL AND last_viewed_at < ?", horizon).
				Delete(&models.View{})
			if res.Error != nil {
				log.Printf("view ledger pruner failed: %v", res.Error)
				continue
			}
			if res.RowsAffected > 0 && Sugar != nil {
				Sugar.Infof("view ledger pruner removed %d stale anonymous rows", res.RowsAffected)
			}
		}
	}()
}
