package services

import "crewdesk/internal/models"

// Allowed order status transitions. Completed and cancelled are terminal;
// cancelling is possible until the order ships.
var orderTransitions = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderPending:   {models.OrderPaid: true, models.OrderCancelled: true},
	models.OrderPaid:      {models.OrderShipped: true, models.OrderCancelled: true},
	models.OrderShipped:   {models.OrderCompleted: true},
	models.OrderCompleted: {},
	models.OrderCancelled: {},
}

func canTransition(current, to models.OrderStatus) bool {
	if current == "" {
		// legacy rows without a status may enter anywhere
		return true
	}
	nexts, ok := orderTransitions[current]
	if !ok {
		return false
	}
	return nexts[to]
}
