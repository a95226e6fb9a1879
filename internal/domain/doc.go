// Package domain models the farm map: geolocated farm records, the
// proximity and status rules that drive marker styling, and the events
// that carry user selections in and render frames out.
//
// # Data Source
//
// Farm records originate from the yield analysis pipeline. Each farm's
// yield is compared with the average of its nearest neighbors; the
// difference becomes the deviation metric and an absolute difference
// above a threshold sets the anomaly flag. The pipeline writes a JSON
// array that the service fetches once at start-up:
//
//	{"farm_id":"F001","farmer_name":"...","latitude":13.75,"longitude":100.50,
//	 "neighborhood_avg_yield_difference":1.5,"is_anomaly":true,
//	 "llm_reasoning":"...","nearest_neighbors_indices":[3,7]}
//
// The analysis writes the literal string "nan" when no narrative was
// generated for a farm. Decoding replaces it with [DefaultReasoning].
//
// # Map Rules
//
// Distances are great-circle distances in meters (haversine, mean Earth
// radius 6,371 km). Selecting a farm highlights every farm within the
// configured radius (5 km by default), the selected farm included.
//
// Status categories:
//
//	NORMAL        anomaly flag false, deviation ignored
//	ANOMALY_HIGH  anomaly flag true, deviation > 0
//	ANOMALY_LOW   anomaly flag true, deviation <= 0
//
// The anomaly flag and the deviation sign are supplied independently by
// the analysis; this package never derives one from the other when
// serving records.
//
// Render descriptors are produced by [Reduce] from an explicit
// [ViewState]. With no selection every marker is drawn normally; with a
// selection, farms outside the proximity set are dimmed to
// [DimmedOpacity] rather than hidden.
package domain
