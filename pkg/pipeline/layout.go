package pipeline

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// Layout derives file locations from (service, month).
//
//	<raw>/tlc/<service>/<yyyy>/<service>_tripdata_<yyyy-mm>.parquet
//	<clean>/tlc_clean/<service>/<yyyy>/clean_<service>_tripdata_<yyyy-mm>.parquet
type Layout struct {
	RawDir   string
	CleanDir string
}

func (l Layout) RawPath(service string, m Month) string {
	return filepath.Join(l.RawDir, "tlc", service, strconv.Itoa(m.Year),
		fmt.Sprintf("%s_tripdata_%s.parquet", service, m))
}

func (l Layout) CleanPath(service string, m Month) string {
	return filepath.Join(l.CleanDir, "tlc_clean", service, strconv.Itoa(m.Year),
		fmt.Sprintf("clean_%s_tripdata_%s.parquet", service, m))
}
