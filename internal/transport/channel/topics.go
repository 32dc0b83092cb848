package channel

// Topic names carried by the realtime channel. They follow the service's
// resource:action convention.
const (
	TopicEntryCreated    = "extrato:create"
	TopicEntryUpdated    = "extrato:update"
	TopicEntryDeleted    = "extrato:delete"
	TopicEntryDeletedAll = "extrato:delete:all"

	TopicEventCreated = "evento:create"
	TopicEventUpdated = "evento:update"
	TopicEventDeleted = "evento:delete"

	TopicRegistrationCreated = "registro:create"
	TopicRegistrationUpdated = "registro:update"
	TopicRegistrationDeleted = "registro:delete"

	// TopicStatus carries free-form progress updates while the server imports
	// movements. Display only, never authoritative.
	TopicStatus = "extrato_status"

	// TopicChartRefresh pushes a server-computed chart payload.
	TopicChartRefresh = "atualizar_grafico"
)
