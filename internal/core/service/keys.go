package service

// Lock keys. Presence always takes a room key before a character key.
func userKey(id string) string      { return "user:" + id }
func inventoryKey(id string) string { return "inventory:" + id }
func purchaseKey(id string) string  { return "purchase:" + id }
func roomKey(id string) string      { return "room:" + id }
func characterKey(id string) string { return "character:" + id }
