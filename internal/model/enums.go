package model

type UserRole string

const (
	UserRolePassenger UserRole = "passenger"
	UserRoleVisitor   UserRole = "visitor"
	UserRoleAdmin     UserRole = "admin"
)

type TrackingStatus string

const (
	TrackingStatusActive    TrackingStatus = "active"
	TrackingStatusCompleted TrackingStatus = "completed"
	TrackingStatusExpired   TrackingStatus = "expired"
)

// Valid reports whether s is one of the persisted tracking states.
func (s TrackingStatus) Valid() bool {
	switch s {
	case TrackingStatusActive, TrackingStatusCompleted, TrackingStatusExpired:
		return true
	}
	return false
}

type FlightStatus string

const (
	FlightStatusOnTime    FlightStatus = "On Time"
	FlightStatusDelayed   FlightStatus = "Delayed"
	FlightStatusBoarding  FlightStatus = "Boarding"
	FlightStatusDeparted  FlightStatus = "Departed"
	FlightStatusLanded    FlightStatus = "Landed"
	FlightStatusArrived   FlightStatus = "Arrived"
	FlightStatusCancelled FlightStatus = "Cancelled"
)

func (s FlightStatus) Valid() bool {
	switch s {
	case FlightStatusOnTime, FlightStatusDelayed, FlightStatusBoarding,
		FlightStatusDeparted, FlightStatusLanded, FlightStatusArrived, FlightStatusCancelled:
		return true
	}
	return false
}

type MessageSender string

const (
	SenderUser MessageSender = "user"
	SenderBot  MessageSender = "bot"
)

type ServiceCategory string

const (
	ServiceCategoryShop       ServiceCategory = "shop"
	ServiceCategoryRestaurant ServiceCategory = "restaurant"
	ServiceCategoryCafe       ServiceCategory = "cafe"
	ServiceCategoryLounge     ServiceCategory = "lounge"
	ServiceCategoryBank       ServiceCategory = "bank"
	ServiceCategoryPharmacy   ServiceCategory = "pharmacy"
	ServiceCategoryOther      ServiceCategory = "other"
)

func (c ServiceCategory) Valid() bool {
	switch c {
	case ServiceCategoryShop, ServiceCategoryRestaurant, ServiceCategoryCafe,
		ServiceCategoryLounge, ServiceCategoryBank, ServiceCategoryPharmacy, ServiceCategoryOther:
		return true
	}
	return false
}

type SpaceCategory string

const (
	SpaceCategoryGate        SpaceCategory = "gate"
	SpaceCategorySecurity    SpaceCategory = "security"
	SpaceCategoryBaggage     SpaceCategory = "baggage"
	SpaceCategoryRestroom    SpaceCategory = "restroom"
	SpaceCategoryInformation SpaceCategory = "information"
	SpaceCategoryWaitingArea SpaceCategory = "waiting_area"
	SpaceCategoryParking     SpaceCategory = "parking"
	SpaceCategoryOther       SpaceCategory = "other"
)

func (c SpaceCategory) Valid() bool {
	switch c {
	case SpaceCategoryGate, SpaceCategorySecurity, SpaceCategoryBaggage, SpaceCategoryRestroom,
		SpaceCategoryInformation, SpaceCategoryWaitingArea, SpaceCategoryParking, SpaceCategoryOther:
		return true
	}
	return false
}
