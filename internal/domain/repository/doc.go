// Package repository define los contratos de dominio para el almacenamiento de
// templates de email.
//
// Las implementaciones viven en internal/store/adapters/ (pg, mysql, sqlite,
// fs, memory) y se registran en el registry de internal/store.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Los nombres de template se comparan exactos, después de TrimSpace
//   - Errores de dominio están en errors.go
package repository
