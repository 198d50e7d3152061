package background

import (
	"fmt"

	"github.com/riverqueue/river"
	"github.com/robfig/cron/v3"
)

// PeriodicJobs returns the recurring jobs. channelSyncSchedule is a standard
// five field cron expression; an empty schedule disables channel sync.
func PeriodicJobs(channelSyncSchedule string) ([]*river.PeriodicJob, error) {
	if channelSyncSchedule == "" {
		return nil, nil
	}

	schedule, err := cron.ParseStandard(channelSyncSchedule)
	if err != nil {
		return nil, fmt.Errorf("error parsing channel sync schedule %q: %w", channelSyncSchedule, err)
	}

	constructor := func() (river.JobArgs, *river.InsertOpts) {
		return ChannelSyncArgs{}, nil
	}

	return []*river.PeriodicJob{
		river.NewPeriodicJob(schedule, constructor, &river.PeriodicJobOpts{
			RunOnStart: true,
		}),
	}, nil
}
