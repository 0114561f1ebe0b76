package event_bus

type PetCreated struct {
	PetId int
	Name  string
}

type CareEventCreated struct {
	EventId     string
	PetId       int
	EventType   string
	IsRecurring bool
}
