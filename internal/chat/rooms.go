package chat

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Комнаты адресуются строковыми ключами:
//
//	order_<id>   — комната заказа, видна владельцу и администраторам
//	user_<uuid>  — личная комната пользователя, в неё доставляются директы
//	support_<uuid> — тред поддержки клиента, виден клиенту и администраторам
//	admins       — общая комната администраторов
const (
	RoomAdmins = "admins"

	roomPrefixOrder   = "order_"
	roomPrefixUser    = "user_"
	roomPrefixSupport = "support_"
)

type RoomKind int

const (
	RoomKindUnknown RoomKind = iota
	RoomKindOrder
	RoomKindPersonal
	RoomKindSupport
	RoomKindAdmins
)

// Room — разобранный ключ комнаты.
type Room struct {
	Kind    RoomKind
	Name    string
	OrderID uint      // для RoomKindOrder
	UserID  uuid.UUID // для RoomKindPersonal и RoomKindSupport
}

func OrderRoom(orderID uint) string {
	return roomPrefixOrder + strconv.FormatUint(uint64(orderID), 10)
}

func PersonalRoom(userID uuid.UUID) string {
	return roomPrefixUser + userID.String()
}

func SupportRoom(userID uuid.UUID) string {
	return roomPrefixSupport + userID.String()
}

// ParseRoom разбирает ключ комнаты. Неизвестный формат возвращается
// как RoomKindUnknown — такие комнаты gate никому не разрешает.
func ParseRoom(name string) Room {
	switch {
	case name == RoomAdmins:
		return Room{Kind: RoomKindAdmins, Name: name}

	case strings.HasPrefix(name, roomPrefixOrder):
		id, err := strconv.ParseUint(strings.TrimPrefix(name, roomPrefixOrder), 10, 64)
		if err != nil {
			return Room{Kind: RoomKindUnknown, Name: name}
		}
		return Room{Kind: RoomKindOrder, Name: name, OrderID: uint(id)}

	case strings.HasPrefix(name, roomPrefixUser):
		id, err := uuid.Parse(strings.TrimPrefix(name, roomPrefixUser))
		if err != nil {
			return Room{Kind: RoomKindUnknown, Name: name}
		}
		return Room{Kind: RoomKindPersonal, Name: name, UserID: id}

	case strings.HasPrefix(name, roomPrefixSupport):
		id, err := uuid.Parse(strings.TrimPrefix(name, roomPrefixSupport))
		if err != nil {
			return Room{Kind: RoomKindUnknown, Name: name}
		}
		return Room{Kind: RoomKindSupport, Name: name, UserID: id}
	}

	return Room{Kind: RoomKindUnknown, Name: name}
}
