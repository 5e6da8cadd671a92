package measure

// Catalog lists the predefined choices offered when capturing a measurement.
type Catalog struct {
	BlindTypes  []string `json:"blindTypes"`
	FabricTypes []string `json:"fabricTypes"`
	FabricNames []string `json:"fabricNames"`
	Mechanisms  []string `json:"mechanisms"`
	Locations   []string `json:"locations"`
}

// DefaultCatalog returns a fresh copy of the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		BlindTypes:  []string{"Enrollable", "Sheer", "Panel Japonés"},
		FabricTypes: []string{"Screen", "Blackout", "Traslúcida", "Semitraslúcida"},
		FabricNames: []string{
			"B.O. 500",
			"B.O. IPANEMA 2.40 MTS",
			"B.O. LONG BEACH 2.50 MTS",
			"B.O. LUXURY 3.00 MTS",
			"B.O. MONTREAL",
			"B.O. SIDNEY 3.00 MTS",
			"B.O. BUDELLI 2.50 MTS",
			"BO TEXTURE 2.60 MTS",
			"BO OHIO 2.50 MTS",
			"DUO BASIC 2.50 MTS",
			"DUOLINE DIM OUT 3.00 MTS",
			"DUO WOODLINE 2.60 MTS",
			"DUO CELEBRITY 2.50 MTS",
			"DUO DIM OUT SOFT 3.00",
			"DUO TERRA 3.00 MTS",
			"DUO BRIGHT 2.85 MTS",
			"DUO DIM OUT WOODS 3.00 MTS",
			"DUO SEASON 2.80 MTS",
			"F.L. IPANEMA 2.50 MTS",
			"F.L. LONG BEACH 2.50 MTS",
			"F.L SIDNEY 3.00 MTS",
			"F.L. BUDELLI 2.20 MTS",
			"SCREEN BASIC 2.00 MTS",
			"SCREEN SOFT 2.00 MTS",
			"SCREEN MILAN 2.50 MTS",
			"SCREEN ONE 2.50 MTS",
			"GALAXY BLACK OUT 3MTS",
			"F.L. BERLIN 2.80 MTS",
			"SHEER ADVANTAGE 3MTS",
			"DUO DENSE WOODLOOK 2.80 MTS",
			"DUO ROYAL DIM OUT 2.80 MTS",
			"DUO LINO DIM OUT 2.80 MTS",
			"DUO GENIUS DIM OUT 2.80 MTS",
			"Duo Radiance 3.00",
			"Dim out Glam 3.0",
			"Fl Fresh 2.80",
			"Bo Stylus 3.00",
			"Brave 2.80",
		},
		Mechanisms: []string{MechanismRight, MechanismLeft},
		Locations: []string{
			"Sala", "Comedor", "Cocina",
			"Recámara Principal", "Recámara 1", "Recámara 2", "Recámara 3", "Recámara 4",
			"Estudio", "Oficina", "Baño Principal", "Baño 2", "Pasillo", "Vestíbulo",
			"Entrada", "Escalera", "Terraza", "Balcón", "Cuarto de Lavado",
			"Cuarto de Servicio", "Bodega", "Gimnasio", "Sala de TV", "Otro",
		},
	}
}
