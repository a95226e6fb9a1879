package domain

// SourceFallback labels a collection built from the bundled sample farms.
const SourceFallback = "fallback"

// FallbackFarms returns the bundled sample farms served when the collection
// document cannot be fetched. The slice is freshly allocated on every call.
func FallbackFarms() []Farm {
	return []Farm{
		{
			ID: "F001", FarmerName: "สมชาย ใจดี",
			Geo:       Geo{Lat: 13.7563, Lon: 100.5018},
			Deviation: 1.5, Anomaly: true,
			Reasoning: "ผลผลิตสูงกว่าค่าเฉลี่ยของฟาร์มข้างเคียง เนื่องจากให้น้ำแบบน้ำหยดสม่ำเสมอ",
		},
		{
			ID: "F002", FarmerName: "สมหญิง รักไทย",
			Geo:       Geo{Lat: 13.7650, Lon: 100.6477},
			Deviation: -0.8, Anomaly: true,
			Reasoning: "ผลผลิตต่ำกว่าฟาร์มข้างเคียง อาจเกิดจากการระบายน้ำไม่ดีในช่วงฤดูฝน",
		},
		{
			ID: "F003", FarmerName: "ประเสริฐ มั่งมี",
			Geo:       Geo{Lat: 13.7563, Lon: 100.5318},
			Deviation: 0.3, Anomaly: false,
			Reasoning: DefaultReasoning,
		},
		{
			ID: "F004", FarmerName: "วิไล ศรีสุข",
			Geo:       Geo{Lat: 13.7900, Lon: 100.5018},
			Deviation: -0.2, Anomaly: false,
			Reasoning: DefaultReasoning,
		},
		{
			ID: "F005", FarmerName: "บุญมี ทองคำ",
			Geo:       Geo{Lat: 14.4745, Lon: 100.1222},
			Deviation: 2.1, Anomaly: true,
			Reasoning: "ใช้พันธุ์อ้อยใหม่และใส่ปุ๋ยอินทรีย์ร่วมกับปุ๋ยเคมี ทำให้ค่า CCS สูงกว่าเพื่อนบ้าน",
		},
		{
			ID: "F006", FarmerName: "มาลี ดอกไม้",
			Geo:       Geo{Lat: 14.4800, Lon: 100.1300},
			Deviation: 0, Anomaly: false,
			Reasoning: DefaultReasoning,
		},
	}
}

// FallbackCollection returns the bundled sample farms as a snapshot.
func FallbackCollection() Collection {
	c, err := NewCollection(FallbackFarms(), SourceFallback)
	if err != nil {
		panic("domain: invalid fallback farms: " + err.Error())
	}
	return c
}
