package reports

// ChangeType colours a stat card's change line.
type ChangeType string

const (
	ChangePositive ChangeType = "positive"
	ChangeNeutral  ChangeType = "neutral"
	ChangeNegative ChangeType = "negative"
)

// StatCard is one dashboard tile.
type StatCard struct {
	Title      string     `json:"title"`
	Value      string     `json:"value"`
	Icon       string     `json:"icon"`
	Change     string     `json:"change"`
	ChangeType ChangeType `json:"changeType"`
	Color      string     `json:"color"`
}

// RecentAppointment is a resolved row of the recent appointments table.
type RecentAppointment struct {
	ID          int    `json:"id"`
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName"`
	Date        string `json:"date"`
	TimeSlot    string `json:"timeSlot"`
	Status      string `json:"status"`
}

// RevenueShare is the billed amount for one bill status.
type RevenueShare struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage int     `json:"percentage"`
}

// LowStockMedicine is a medicine at or below its minimum stock.
type LowStockMedicine struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"minStock"`
	Status   string `json:"status"`
}

// Summary is the reports page payload.
type Summary struct {
	TotalPatients        int                 `json:"totalPatients"`
	TotalDoctors         int                 `json:"totalDoctors"`
	TotalAppointments    int                 `json:"totalAppointments"`
	TotalRevenue         float64             `json:"totalRevenue"`
	Outstanding          float64             `json:"outstanding"`
	PendingBills         int                 `json:"pendingBills"`
	AppointmentsByStatus map[string]int      `json:"appointmentsByStatus"`
	RecentAppointments   []RecentAppointment `json:"recentAppointments"`
	RevenueBreakdown     []RevenueShare      `json:"revenueBreakdown"`
	LowStockMedicines    []LowStockMedicine  `json:"lowStockMedicines"`
}
