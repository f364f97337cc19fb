// Package capture writes monitor sessions to disk.
//
// Each session produces timestamped log files (comsniff_YYYYMMDD_HHMMSS_mmm.log)
// in the capture directory. Files carry a header block describing the
// session, rotate at 20 MiB, and are fsynced every 8 KiB of written data
// so a crash loses at most a small window of traffic. Lines are queued in
// memory and written in batches; the queue is capped at 5 MiB and dropped
// wholesale on overflow — losing log lines is preferable to stalling the
// serial readers.
package capture
