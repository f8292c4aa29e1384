package dto

type ReportJobRequest struct {
	Name         string `json:"name"`
	ReportType   string `json:"report_type"`
	ScheduleType string `json:"schedule_type"`
	ScheduleTime string `json:"schedule_time"`
	ScheduleDay  *int   `json:"schedule_day,omitempty"`
	Recipients   string `json:"recipients"`
	Filters      string `json:"filters,omitempty"`
	Format       string `json:"format,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}
