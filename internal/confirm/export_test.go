package confirm

import "time"

// SetTimingsForTest shortens the polling interval and observation window so
// external-package tests can exercise the worker without real-time waits.
func SetTimingsForTest(w *CheckTransferWorker, interval, window time.Duration) {
	w.interval = interval
	w.window = window
}
