package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fieldstock/models"
)

// ConnectDB opens the Postgres connection and applies the schema.
func ConnectDB(dsn string) *gorm.DB {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	return conn
}

// Migrate applies the schema plus the partial unique indexes the models
// cannot express through tags.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Material{}, &models.StockArea{}, &models.User{},
		&models.Unit{},
		&models.Receipt{}, &models.ReceiptLine{},
		&models.Transfer{}, &models.TransferLine{},
		&models.Consumption{}, &models.ConsumptionLine{},
		&models.Return{}, &models.ReturnLine{},
	); err != nil {
		return err
	}

	// Serial numbers and MAC addresses must be unique among active units
	// only; retired (inactive) rows may keep theirs for audit.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_serial_active
	  ON %s (serial_number)
	  WHERE serial_number IS NOT NULL AND active;
	`, models.UnitTable, models.UnitTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_mac_active
	  ON %s (mac_address)
	  WHERE mac_address IS NOT NULL AND active;
	`, models.UnitTable, models.UnitTable)).Error; err != nil {
		return err
	}

	// One material code per organization among active rows.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_code_active
	  ON %s (org_id, code)
	  WHERE active;
	`, models.MaterialTable, models.MaterialTable)).Error; err != nil {
		return err
	}

	// Slip numbers are unique per organization; the generator's retry loop
	// leans on these indexes to close its race window. NULL-org rows need
	// their own index, a composite key never treats two NULLs as equal.
	for _, table := range []string{
		models.ReceiptTable, models.TransferTable,
		models.ConsumptionTable, models.ReturnTable,
	} {
		if err := db.Exec(fmt.Sprintf(`
		  CREATE UNIQUE INDEX IF NOT EXISTS %s_slip_no
		  ON %s (org_id, slip_no)
		  WHERE org_id IS NOT NULL;
		`, table, table)).Error; err != nil {
			return err
		}
		if err := db.Exec(fmt.Sprintf(`
		  CREATE UNIQUE INDEX IF NOT EXISTS %s_slip_no_noorg
		  ON %s (slip_no)
		  WHERE org_id IS NULL;
		`, table, table)).Error; err != nil {
			return err
		}
	}

	return nil
}
