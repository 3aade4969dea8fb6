package model

import (
	"time"

	"github.com/google/uuid"
)

type GrupoCliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

func (GrupoCliente) TableName() string { return "grupos_cliente" }

// Cliente is a customer. GrupoClienteID selects CUSTOMER_GROUP margin rules.
type Cliente struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre         string     `gorm:"not null"`
	GrupoClienteID *uuid.UUID `gorm:"type:uuid;index"`
	Activo         bool       `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	GrupoCliente *GrupoCliente `gorm:"foreignKey:GrupoClienteID"`
}

func (Cliente) TableName() string { return "clientes" }
