package ports

import "runepkg/internal/types"

type ReportWriterPort interface {
	WriteBatchReport(path string, report types.BatchReport) error
	WriteUpdateSet(path string, set types.UpdateSet) error
}
