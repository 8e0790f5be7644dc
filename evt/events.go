package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// ListDownloaded fires once a FilterList's raw bytes have been
	// (re-)fetched. Parameter: list id.
	ListDownloaded = "list:downloaded"

	// ListDownloadFailed fires if downloading a FilterList's source fails.
	// Parameter: source link.
	ListDownloadFailed = "list:downloadFailed"

	// ListExtracted fires once a FilterList has been run through its
	// regex and written to its extract file. Parameter: list id, token count.
	ListExtracted = "list:extracted"

	// CategoryUpdated fires once a tag's category list has been
	// (re-)merged. Parameter: tag, entry count.
	CategoryUpdated = "category:updated"

	// OutputWritten fires once a tag's output file has been rendered.
	// Parameter: tag, output format.
	OutputWritten = "output:written"

	// StageCompleted fires after a pipeline stage finishes. Parameter:
	// stage name.
	StageCompleted = "stage:completed"

	// ApplicationStarted fires on start of the application. Parameter:
	// version number, build time.
	ApplicationStarted = "application:started"
)

// nolint
var evtBus = EventBus.New()

// Bus returns the global bus instance
func Bus() EventBus.Bus {
	return evtBus
}
