// Package repository define los contratos de persistencia del núcleo de
// autenticación: cuentas, bloqueos por intentos fallidos, historial de
// contraseñas y tokens de recuperación.
//
// Los services dependen solo de estas interfaces. Las implementaciones viven
// en internal/store (MySQL/PostgreSQL sobre database/sql) e
// internal/store/memory (fake en memoria para tests y modo "memory").
//
// Convenciones:
//   - Un registro inexistente devuelve ErrNotFound (nunca nil, nil).
//   - Un email duplicado devuelve ErrConflict.
//   - Cualquier otro error es un fallo del almacenamiento y el service lo
//     reporta como dependencia no disponible.
package repository
