package rma

// Store-side statuses.
const (
	StorePending         = "pending"
	StoreSentToInventory = "sent_to_inventory"
	StoreCompleted       = "completed"
	StoreFailed          = "failed"
	StoreSentToStore     = "sent_to_store"
)

// Inventory-side statuses. The empty string means the item has not
// reached inventory yet.
const (
	InventoryReceive  = "receive"
	InventoryProcess  = "process"
	InventoryComplete = "complete"
	InventoryFailed   = "failed"
)

// Location types.
const (
	LocationStore     = "store"
	LocationInventory = "inventory"
)

// Event names. They double as history actions.
const (
	EventSendToInventory = "send_to_inventory"
	EventProcess         = "process"
	EventComplete        = "complete"
	EventFail            = "fail"
	EventSendToStore     = "send_to_store"
)

// State is the combined position of an RMA item in both machines.
type State struct {
	Store     string
	Inventory string
	Location  string
}

// Apply computes the state after an event, or an InvalidTransitionError
// when the event is not legal from the current state. All three fields
// are always derived together.
func (s State) Apply(event string) (State, error) {
	switch event {
	case EventSendToInventory:
		if s.Store != StorePending {
			return s, &InvalidTransitionError{
				Event: event,
				From:  s.Store,
				Message: "Invalid status transition from " + s.Store +
					" to " + StoreSentToInventory,
			}
		}

		return State{Store: StoreSentToInventory, Inventory: InventoryReceive, Location: LocationInventory}, nil

	case EventProcess:
		if s.Inventory != InventoryReceive {
			return s, &InvalidTransitionError{
				Event:   event,
				From:    s.Inventory,
				Message: "Can only process RMA items in receive status",
			}
		}

		return State{Store: s.Store, Inventory: InventoryProcess, Location: s.Location}, nil

	case EventComplete:
		if s.Inventory != InventoryProcess {
			return s, &InvalidTransitionError{
				Event:   event,
				From:    s.Inventory,
				Message: "Can only complete RMA items in process status",
			}
		}

		return State{Store: StoreCompleted, Inventory: InventoryComplete, Location: s.Location}, nil

	case EventFail:
		if s.Inventory != InventoryReceive && s.Inventory != InventoryProcess {
			return s, &InvalidTransitionError{
				Event:   event,
				From:    s.Inventory,
				Message: "Can only fail RMA items in receive or process status",
			}
		}

		return State{Store: StoreFailed, Inventory: InventoryFailed, Location: s.Location}, nil

	case EventSendToStore:
		if s.Store != StoreCompleted {
			return s, &InvalidTransitionError{
				Event:   event,
				From:    s.Store,
				Message: "Only completed RMA items can be sent back to store inventory",
			}
		}

		return State{Store: StoreSentToStore, Inventory: s.Inventory, Location: LocationStore}, nil

	default:
		return s, &InvalidTransitionError{Event: event, From: s.Store, Message: "Unknown RMA event"}
	}
}
