package knowledge

// Built-in reference material. Troubleshooting and review flows rely on the
// stable keys here; everything else can change without notice.
func (st *Store) seedDefaults() {
	st.Add("standards", "iec_61215", map[string]any{
		"content": "IEC 61215 - Design qualification and type approval for crystalline silicon PV modules",
		"tests": []string{
			"Visual inspection", "Performance at STC", "Insulation test",
			"Temperature coefficients", "NOCT", "Low irradiance",
			"Outdoor exposure", "Hot-spot endurance", "UV preconditioning",
			"Thermal cycling", "Humidity freeze", "Damp heat",
			"Robustness of terminations", "Wet leakage current",
			"Mechanical load", "Hail test", "Bypass diode",
		},
	})
	st.Add("standards", "iec_61730", map[string]any{
		"content": "IEC 61730 - PV module safety qualification",
		"tests": []string{
			"Construction", "Accessible parts", "Insulation",
			"Fire resistance", "Mechanical stress", "Environmental stress",
		},
	})
	st.Add("standards", "ul_1703", map[string]any{
		"content": "UL 1703 - Flat-Plate Photovoltaic Modules and Panels",
		"tests":   []string{"Electrical", "Fire", "Mechanical", "Environmental"},
	})

	st.Add("test_procedures", "iv_curve", map[string]any{
		"content": "I-V Curve measurement procedure",
		"steps": []string{
			"Set up test conditions", "Connect module", "Stabilize temperature",
			"Perform measurement", "Validate data", "Calculate parameters",
		},
	})
	st.Add("test_procedures", "insulation_test", map[string]any{
		"content":       "Insulation resistance test",
		"voltage":       "1000V DC",
		"duration":      "60 seconds",
		"pass_criteria": ">40 MOhm for modules <50kW",
	})
	st.Add("test_procedures", "thermal_cycling", map[string]any{
		"content":           "Thermal cycling test (TC200)",
		"cycles":            200,
		"temperature_range": "-40C to +85C",
		"pass_criteria":     "Pmax degradation <5%",
	})

	st.Add("equipment", "solar_simulator", map[string]any{
		"content": "Solar simulator for STC testing",
		"requirements": []string{
			"Class AAA", "1000 W/m2", "AM1.5G spectrum", "25C cell temperature",
		},
	})
	st.Add("equipment", "thermal_chamber", map[string]any{
		"content": "Environmental chamber for thermal testing",
		"requirements": []string{
			"Temperature range: -40C to +85C", "Humidity control", "Programmable cycles",
		},
	})

	st.Add("best_practices", "data_quality", map[string]any{
		"content": "Best practices for data quality",
		"guidelines": []string{
			"Regular calibration", "Duplicate measurements", "Statistical analysis",
			"Document uncertainties", "Validate anomalies",
		},
	})
	st.Add("best_practices", "safety", map[string]any{
		"content": "Laboratory safety guidelines",
		"guidelines": []string{
			"PPE requirements", "Electrical safety", "Chemical handling",
			"Emergency procedures",
		},
	})
}
