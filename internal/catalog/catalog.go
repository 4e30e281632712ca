package catalog

// ServiceType identifies one of the fixed services the shop offers.
type ServiceType string

const (
	ServiceOilChange          ServiceType = "oil-change"
	ServiceTireRotation       ServiceType = "tire-rotation"
	ServiceBrakeInspection    ServiceType = "brake-inspection"
	ServiceWheelAlignment     ServiceType = "wheel-alignment"
	ServiceFlatTireRepair     ServiceType = "flat-tire-repair"
	ServiceSeasonalTireChange ServiceType = "seasonal-tire-change"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ServiceInterval is the recommended maintenance cadence for a service.
// A nil interval means the service is not tracked on that dimension.
type ServiceInterval struct {
	Type               ServiceType
	DisplayName        string
	TimeIntervalMonths *int
	MileageInterval    *int
	Priority           Priority
	Description        string
}

func months(n int) *int { return &n }
func miles(n int) *int  { return &n }

var intervals = []ServiceInterval{
	{
		Type:               ServiceOilChange,
		DisplayName:        "Oil Change",
		TimeIntervalMonths: months(3),
		MileageInterval:    miles(3000),
		Priority:           PriorityHigh,
		Description:        "Regular engine oil replacement and filter change",
	},
	{
		Type:               ServiceTireRotation,
		DisplayName:        "Tire Rotation",
		TimeIntervalMonths: months(6),
		MileageInterval:    miles(6000),
		Priority:           PriorityMedium,
		Description:        "Rotate tires for even wear and extend tire life",
	},
	{
		Type:               ServiceBrakeInspection,
		DisplayName:        "Brake Inspection",
		TimeIntervalMonths: months(12),
		MileageInterval:    miles(12000),
		Priority:           PriorityHigh,
		Description:        "Complete brake system check and pad replacement",
	},
	{
		Type:               ServiceWheelAlignment,
		DisplayName:        "Wheel Alignment",
		TimeIntervalMonths: months(12),
		MileageInterval:    miles(12000),
		Priority:           PriorityMedium,
		Description:        "Precise wheel alignment for optimal handling and tire wear",
	},
	{
		Type:               ServiceFlatTireRepair,
		DisplayName:        "Tire Inspection",
		TimeIntervalMonths: months(6),
		MileageInterval:    miles(6000),
		Priority:           PriorityLow,
		Description:        "Professional tire inspection and repair services",
	},
	{
		Type:               ServiceSeasonalTireChange,
		DisplayName:        "Seasonal Tire Change",
		TimeIntervalMonths: months(6),
		MileageInterval:    nil, // seasonal, not mileage based
		Priority:           PriorityMedium,
		Description:        "Switch between summer and winter tires seasonally",
	},
}

// slotMenus holds the fixed time-of-day menu offered per service type.
var slotMenus = map[ServiceType][]string{
	ServiceOilChange:          {"9:00 AM", "10:30 AM", "2:00 PM", "3:30 PM", "5:00 PM"},
	ServiceBrakeInspection:    {"9:00 AM", "1:00 PM", "3:00 PM"},
	ServiceTireRotation:       {"9:00 AM", "10:00 AM", "11:00 AM", "2:00 PM", "3:00 PM", "4:00 PM"},
	ServiceFlatTireRepair:     {"9:00 AM", "10:30 AM", "2:00 PM", "3:30 PM", "5:00 PM"},
	ServiceWheelAlignment:     {"9:00 AM", "11:00 AM", "2:00 PM", "4:00 PM"},
	ServiceSeasonalTireChange: {"9:00 AM", "10:00 AM", "11:00 AM", "2:00 PM", "3:00 PM", "4:00 PM"},
}

var defaultSlotMenu = []string{"9:00 AM", "10:30 AM", "2:00 PM", "3:30 PM"}

// All returns every configured service interval in catalog order.
func All() []ServiceInterval {
	out := make([]ServiceInterval, len(intervals))
	copy(out, intervals)
	return out
}

// Lookup returns the interval configuration for a service type.
func Lookup(t ServiceType) (ServiceInterval, bool) {
	for _, iv := range intervals {
		if iv.Type == t {
			return iv, true
		}
	}
	return ServiceInterval{}, false
}

// ParseServiceType validates a raw service type string.
func ParseServiceType(s string) (ServiceType, bool) {
	t := ServiceType(s)
	_, ok := Lookup(t)
	return t, ok
}

// SlotMenu returns the ordered slot labels offered for a service type.
// Unrecognized types get the default menu.
func SlotMenu(t ServiceType) []string {
	menu, ok := slotMenus[t]
	if !ok {
		menu = defaultSlotMenu
	}
	out := make([]string, len(menu))
	copy(out, menu)
	return out
}
